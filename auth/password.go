package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"investment-research/database"
	"investment-research/models"
)

var ErrInvalidCredentials = errors.New("incorrect username or password")

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// UserFinder looks users up by name.
type UserFinder interface {
	UserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Authenticate returns the active user matching the credentials.
// Unknown users, wrong passwords and inactive accounts all give
// ErrInvalidCredentials. Other lookup failures are returned as is.
func Authenticate(ctx context.Context, users UserFinder, username, password string) (*models.User, error) {
	u, err := users.UserByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if !u.IsActive || !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
