package auth

import (
	"crypto/rsa"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/xela07ax/storefront-console/internal/domain"
)

const issuer = "storefront-console"

// Signer выпускает сессионные токены ЗАКРЫТЫМ КЛЮЧОМ (RS256).
type Signer struct {
	privateKey *rsa.PrivateKey
	ttl        time.Duration
	now        func() time.Time
}

func NewSigner(privateKey *rsa.PrivateKey, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{privateKey: privateKey, ttl: ttl, now: time.Now}
}

// Issue формирует claims из пользователя и подписывает токен.
func (s *Signer) Issue(u domain.User) (*domain.TokenResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &domain.CustomClaims{
		UserID:     u.ID,
		Username:   u.Username,
		Role:       u.Role,
		Privileges: u.Privileges,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.ttl.Seconds()),
	}, nil
}
