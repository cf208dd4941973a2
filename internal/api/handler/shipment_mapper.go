package handler

import (
	"github.com/trackline/shipment-tracker/internal/core/domain"
	"github.com/trackline/shipment-tracker/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createShipmentRequest, ownerID string) ports.CreateShipmentInput {
	return ports.CreateShipmentInput{
		OwnerID:         ownerID,
		TrackingNumber:  req.TrackingNumber,
		CustomerName:    req.CustomerName,
		Status:          req.Status,
		CurrentLocation: req.CurrentLocation,
		ETA:             req.ETA,
	}
}

// --- Domain → Response ---

func toShipmentResponse(s *domain.Shipment) shipmentResponse {
	return shipmentResponse{
		ID:              s.ID,
		OwnerUserID:     s.OwnerUserID,
		TrackingNumber:  s.TrackingNumber,
		CustomerName:    s.CustomerName,
		Status:          string(s.Status),
		CurrentLocation: s.CurrentLocation,
		ETA:             s.ETA,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func toListResponse(result *ports.ListShipmentsResult) listShipmentsResponse {
	items := make([]shipmentResponse, 0, len(result.Items))
	for _, s := range result.Items {
		items = append(items, toShipmentResponse(s))
	}
	return listShipmentsResponse{
		Items:      items,
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	}
}

func toStatsResponse(counts *domain.StatusCounts) statsResponse {
	return statsResponse{
		Pending:   counts.Pending,
		InTransit: counts.InTransit,
		Delivered: counts.Delivered,
	}
}
