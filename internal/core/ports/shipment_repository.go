package ports

import (
	"context"
	"time"

	"github.com/trackline/shipment-tracker/internal/core/domain"
)

// ListShipmentsFilter carries all query parameters for listing shipments.
// OwnerID is always set by the service layer; every repository read and
// write is filtered by it.
type ListShipmentsFilter struct {
	OwnerID  string
	Status   domain.ShipmentStatus // optional: filter by shipment status
	Search   string                // optional: case-insensitive substring over tracking_number, customer_name, current_location
	Page     int                   // 1-based
	PageSize int                   // max rows per page (clamped to 50 by service)
}

// ShipmentRepository defines persistence operations for shipments.
// Every method that takes an ownerID folds it into the query filter, so a
// shipment belonging to another user behaves exactly like a missing one.
type ShipmentRepository interface {
	// Create inserts a new shipment and returns it with its generated ID.
	// Returns domain.ErrTrackingNumberTaken when the tracking_number
	// unique index rejects the insert.
	Create(ctx context.Context, s *domain.Shipment) (*domain.Shipment, error)
	FindByID(ctx context.Context, ownerID, id string) (*domain.Shipment, error)
	// List returns a page of shipments matching filter, newest first,
	// plus the total matching count.
	List(ctx context.Context, filter ListShipmentsFilter) ([]*domain.Shipment, int64, error)
	// UpdateStatus sets only the status and updated_at fields and returns
	// the updated shipment.
	UpdateStatus(ctx context.Context, ownerID, id string, status domain.ShipmentStatus, ts time.Time) (*domain.Shipment, error)
	// Delete hard-deletes the shipment. Returns domain.ErrShipmentNotFound
	// when no owned shipment matches.
	Delete(ctx context.Context, ownerID, id string) error
	ExistsByTrackingNumber(ctx context.Context, trackingNumber string) (bool, error)
	// CountByStatus groups the owner's shipments by status. Statuses with
	// no shipments are absent from the map.
	CountByStatus(ctx context.Context, ownerID string) (map[domain.ShipmentStatus]int64, error)
}
