package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xela07ax/storefront-console/internal/domain"
	"github.com/xela07ax/storefront-console/internal/query"
)

// TokenIssuer подписывает сессионный токен (infra/auth.Signer).
type TokenIssuer interface {
	Issue(u domain.User) (*domain.TokenResponse, error)
}

var errInvalidCredentials = domain.Unauthorized("invalid credentials")

type AuthService struct {
	store  RecordStore
	issuer TokenIssuer
	cost   int
	logger *zap.Logger
}

func NewAuthService(store RecordStore, issuer TokenIssuer, bcryptCost int, logger *zap.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{store: store, issuer: issuer, cost: bcryptCost, logger: logger.Named("auth")}
}

// Register создает пользователя с ролью user. Email и username уникальны.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (domain.User, error) {
	if err := validateInput(req); err != nil {
		return domain.User{}, err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// 1. Проверка занятости
	for col, val := range map[string]string{"email": req.Email, "username": req.Username} {
		n, err := s.store.Count(ctx, domain.TableUsers, query.Where(query.Eq(col, val)))
		if err != nil {
			return domain.User{}, fmt.Errorf("check %s: %w", col, err)
		}
		if n > 0 {
			return domain.User{}, domain.InvalidArgument("%s already taken", col)
		}
	}

	// 2. Хэш пароля (bcrypt)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         domain.RoleUser,
	}
	res, err := s.store.Create(ctx, domain.Anonymous(), domain.TableUsers, domain.Record{
		"email":      user.Email,
		"username":   user.Username,
		"password":   user.PasswordHash,
		"fullName":   user.FullName,
		"phone":      req.Phone,
		"role":       string(user.Role),
		"isVerified": 0,
		"isAdmin":    0,
		"favourites": []any{},
		"orders":     []any{},
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	user.ID = res.LastInsertID
	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login проверяет пароль и выпускает RS256 токен.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	// 1. Аутентификация (источник правды, таблица users)
	row, err := readOne(ctx, s.store, domain.TableUsers, query.Where(query.Eq("email", strings.ToLower(strings.TrimSpace(req.Email)))))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	user := domain.UserFromRow(row)

	// 2. Проверка пароля
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	// 3. Подпись токена
	tok, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// Me: профиль текущего актора.
func (s *AuthService) Me(ctx context.Context, a domain.ActorContext) (domain.User, error) {
	if err := requireUser(a); err != nil {
		return domain.User{}, err
	}
	row, err := readOne(ctx, s.store, domain.TableUsers, query.Where(query.Eq("id", a.ID)))
	if err != nil {
		return domain.User{}, err
	}
	return domain.UserFromRow(row), nil
}
