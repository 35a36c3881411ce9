package service

import (
	"context"

	"github.com/sovaehr/authapi/internal/domain"
)

// AuthService is the capability set handlers depend on. The only production
// implementation is the Supabase REST client; tests substitute a mock.
type AuthService interface {
	SignIn(ctx context.Context, email domain.Email, password domain.Password) (string, error)
	SignUp(ctx context.Context, email domain.Email, password domain.Password, redirectTo string) error
	SignOut(ctx context.Context, token string) error
	DeleteUser(ctx context.Context, userID string) error
	RetrieveUserID(ctx context.Context, email domain.Email) (string, error)
}
