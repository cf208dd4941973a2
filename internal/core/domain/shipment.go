package domain

import (
	"errors"
	"time"
)

// ShipmentStatus represents the lifecycle state of a shipment.
type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "Pending"
	StatusInTransit ShipmentStatus = "InTransit"
	StatusDelivered ShipmentStatus = "Delivered"
)

// Statuses lists every valid shipment status.
var Statuses = []ShipmentStatus{StatusPending, StatusInTransit, StatusDelivered}

var ErrShipmentNotFound = errors.New("shipment not found")
var ErrInvalidShipmentID = errors.New("invalid shipment id")
var ErrInvalidStatus = errors.New("invalid shipment status")
var ErrTrackingNumberTaken = errors.New("tracking number already exists")

// Valid reports whether s is one of the three known statuses.
// Any status may move to any other; there is no transition state machine.
func (s ShipmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered:
		return true
	}
	return false
}

// Shipment is a tracked delivery owned by exactly one user. Only Status and
// UpdatedAt ever change after creation.
type Shipment struct {
	ID              string         `json:"id"`
	OwnerUserID     string         `json:"owner_user_id"`
	TrackingNumber  string         `json:"tracking_number"`
	CustomerName    string         `json:"customer_name"`
	Status          ShipmentStatus `json:"status"`
	CurrentLocation string         `json:"current_location"`
	ETA             time.Time      `json:"eta"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// StatusCounts holds per-status shipment totals for a single owner.
// All three statuses are always present, absent ones as zero.
type StatusCounts struct {
	Pending   int64 `json:"Pending"`
	InTransit int64 `json:"InTransit"`
	Delivered int64 `json:"Delivered"`
}
