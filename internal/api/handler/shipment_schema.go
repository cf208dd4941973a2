package handler

import "time"

// Request and response types owned by the transport layer. These are
// intentionally separate from domain types so the JSON contract is not
// coupled to internal service changes.

type createShipmentRequest struct {
	TrackingNumber  string    `json:"trackingNumber"  validate:"omitempty,min=3,max=50"`
	CustomerName    string    `json:"customerName"    validate:"required,min=2,max=80"`
	Status          string    `json:"status"          validate:"omitempty,oneof=Pending InTransit Delivered"`
	CurrentLocation string    `json:"currentLocation" validate:"required,min=2,max=80"`
	ETA             time.Time `json:"eta"             validate:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending InTransit Delivered"`
}

type shipmentResponse struct {
	ID              string    `json:"id"`
	OwnerUserID     string    `json:"ownerUserId"`
	TrackingNumber  string    `json:"trackingNumber"`
	CustomerName    string    `json:"customerName"`
	Status          string    `json:"status"`
	CurrentLocation string    `json:"currentLocation"`
	ETA             time.Time `json:"eta"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type listShipmentsResponse struct {
	Items      []shipmentResponse `json:"items"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	Total      int64              `json:"total"`
	TotalPages int                `json:"totalPages"`
}

// statsResponse keys are the status values themselves, all three always
// present.
type statsResponse struct {
	Pending   int64 `json:"Pending"`
	InTransit int64 `json:"InTransit"`
	Delivered int64 `json:"Delivered"`
}
