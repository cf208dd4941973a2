package ports

import (
	"context"
	"time"

	"github.com/trackline/shipment-tracker/internal/core/domain"
)

// CreateShipmentInput carries all data needed to create a new shipment.
// OwnerID comes from the authenticated identity, never from the payload.
type CreateShipmentInput struct {
	OwnerID         string
	TrackingNumber  string // optional: generated when empty
	CustomerName    string
	Status          string // optional: defaults to Pending
	CurrentLocation string
	ETA             time.Time
}

// ListShipmentsInput carries all parameters for the list endpoint.
type ListShipmentsInput struct {
	OwnerID  string
	Status   string // optional: silently ignored when not a valid status
	Search   string // optional: free-text substring match
	Page     int
	PageSize int
}

// ListShipmentsResult is returned by List.
type ListShipmentsResult struct {
	Items      []*domain.Shipment
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// ShipmentService defines use-case operations for shipments. All operations
// are implicitly scoped to the owner passed in.
type ShipmentService interface {
	Create(ctx context.Context, input CreateShipmentInput) (*domain.Shipment, error)
	List(ctx context.Context, input ListShipmentsInput) (*ListShipmentsResult, error)
	GetByID(ctx context.Context, ownerID, id string) (*domain.Shipment, error)
	UpdateStatus(ctx context.Context, ownerID, id, status string) (*domain.Shipment, error)
	Delete(ctx context.Context, ownerID, id string) error
	Stats(ctx context.Context, ownerID string) (*domain.StatusCounts, error)
}
