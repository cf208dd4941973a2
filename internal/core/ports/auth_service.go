package ports

import (
	"context"

	"github.com/trackline/shipment-tracker/internal/core/domain"
)

type AuthService interface {
	// Register creates an account for a normalized (trimmed, lowercased)
	// email with a one-way hash of password.
	Register(ctx context.Context, email, password string) (*domain.User, error)
	// Login verifies credentials and returns a signed bearer token.
	// Unknown email and wrong password fail identically with
	// domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (string, error)
}
