package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xela07ax/storefront-console/internal/domain"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestIssueAndVerify(t *testing.T) {
	key := newKey(t)
	signer := NewSigner(key, time.Hour)
	validator := NewBaseValidator(&key.PublicKey)

	user := domain.User{ID: 5, Username: "olga", Role: domain.RoleCustom, Privileges: []string{"orders"}}
	tok, err := signer.Issue(user)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, int64(3600), tok.ExpiresIn)

	for _, raw := range []string{tok.AccessToken, "Bearer " + tok.AccessToken} {
		claims, err := validator.VerifyToken(raw)
		require.NoError(t, err)
		actor := claims.Actor()
		assert.Equal(t, int64(5), actor.ID)
		assert.Equal(t, "olga", actor.DisplayName)
		assert.Equal(t, domain.RoleCustom, actor.Role)
		assert.Equal(t, []string{"orders"}, actor.Privileges)
	}
}

func TestVerifyRejects(t *testing.T) {
	key := newKey(t)
	validator := NewBaseValidator(&key.PublicKey)

	expired := NewSigner(key, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(domain.User{ID: 1, Role: domain.RoleUser})
	require.NoError(t, err)

	foreign, err := NewSigner(newKey(t), time.Hour).Issue(domain.User{ID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)

	hmac := jwt.NewWithClaims(jwt.SigningMethodHS256, &domain.CustomClaims{UserID: 1, Role: domain.RoleSuperAdmin})
	hmacToken, err := hmac.SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "expired", token: old.AccessToken},
		{name: "foreign key", token: foreign.AccessToken},
		{name: "hmac downgrade", token: hmacToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validator.VerifyToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestParseKeys(t *testing.T) {
	key := newKey(t)

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	priv, err := ParseRSAPrivateKey(privPEM)
	require.NoError(t, err)
	assert.True(t, priv.Equal(key))

	pub, err := ParseRSAPublicKey(pubPEM)
	require.NoError(t, err)
	assert.True(t, pub.Equal(&key.PublicKey))

	_, err = ParseRSAPublicKey(nil)
	assert.Error(t, err)
	_, err = ParseRSAPrivateKey([]byte("junk"))
	assert.Error(t, err)
}
