package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims: содержимое сессионного токена витрины.
type CustomClaims struct {
	UserID     int64    `json:"user_id"`
	Username   string   `json:"username"`
	Role       Role     `json:"role"`
	Privileges []string `json:"privileges,omitempty"` // только для custom-роли: список разделов админки
	jwt.RegisteredClaims
}

// Actor переводит claims в контекст актора.
func (c *CustomClaims) Actor() ActorContext {
	role := c.Role
	if !role.Valid() {
		// неизвестная роль в токене, понижаем до обычного пользователя
		role = RoleUser
	}
	return ActorContext{
		ID:          c.UserID,
		DisplayName: c.Username,
		Role:        role,
		Privileges:  c.Privileges,
	}
}

// Secure Token Issuing
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"max=100"`
	Phone    string `json:"phone" validate:"max=15"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Всегда "Bearer"
	ExpiresIn   int64  `json:"expires_in"`
}

type User struct {
	ID           int64    `json:"id"`
	Email        string   `json:"email"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"` // Никогда не отправляем на фронт
	FullName     string   `json:"fullName"`
	Role         Role     `json:"role"`
	Privileges   []string `json:"privileges,omitempty"`
}

// UserFromRow собирает пользователя из строки users (после декодера).
func UserFromRow(row Record) User {
	u := User{
		Email:        String(row["email"]),
		Username:     String(row["username"]),
		PasswordHash: String(row["password"]),
		FullName:     String(row["fullName"]),
		Role:         Role(String(row["role"])),
	}
	u.ID, _ = Int64(row["id"])
	if list, ok := row["privileges"].([]any); ok {
		for _, p := range list {
			if s, ok := p.(string); ok {
				u.Privileges = append(u.Privileges, s)
			}
		}
	}
	return u
}
