package ports

import (
	"context"

	"github.com/trackline/shipment-tracker/internal/core/domain"
)

// AuthRepository defines the interface for user persistence.
type AuthRepository interface {
	// Create inserts a new user. Returns domain.ErrEmailTaken when the
	// email unique index rejects the insert.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
