package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/trackline/shipment-tracker/internal/api/metrics"
	"github.com/trackline/shipment-tracker/internal/core/domain"
	"github.com/trackline/shipment-tracker/internal/core/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50

	// trackingAttempts bounds the collision-retry loop for generated
	// tracking numbers. The unique index on tracking_number is the
	// authoritative guarantee; this loop only reduces the odds of
	// hitting it.
	trackingAttempts = 5
)

// StatsCache abstracts the per-owner status-count cache (Redis). A nil
// counts value on Get means a cache miss.
type StatsCache interface {
	Get(ctx context.Context, ownerID string) (*domain.StatusCounts, error)
	Set(ctx context.Context, ownerID string, counts *domain.StatusCounts) error
	Invalidate(ctx context.Context, ownerID string) error
}

type ShipmentService struct {
	repo   ports.ShipmentRepository
	cache  StatsCache
	logger zerolog.Logger
}

func NewShipmentService(repo ports.ShipmentRepository, cache StatsCache, logger zerolog.Logger) *ShipmentService {
	return &ShipmentService{repo: repo, cache: cache, logger: logger}
}

// Create validates and persists a new shipment owned by input.OwnerID.
// A missing tracking number is generated; a client-supplied one is used
// as-is and surfaces domain.ErrTrackingNumberTaken if already taken.
func (s *ShipmentService) Create(ctx context.Context, input ports.CreateShipmentInput) (*domain.Shipment, error) {
	status := domain.StatusPending
	if input.Status != "" {
		status = domain.ShipmentStatus(input.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, input.Status)
		}
	}

	trackingNumber := strings.TrimSpace(input.TrackingNumber)
	if trackingNumber == "" {
		var err error
		trackingNumber, err = s.uniqueTrackingNumber(ctx)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	shipment := &domain.Shipment{
		OwnerUserID:     input.OwnerID,
		TrackingNumber:  trackingNumber,
		CustomerName:    strings.TrimSpace(input.CustomerName),
		Status:          status,
		CurrentLocation: strings.TrimSpace(input.CurrentLocation),
		ETA:             input.ETA,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.repo.Create(ctx, shipment)
	if err != nil {
		s.logger.Error().Err(err).Str("tracking_number", trackingNumber).Msg("failed to create shipment")
		return nil, err
	}

	metrics.ShipmentsCreatedTotal.WithLabelValues(string(created.Status)).Inc()
	s.invalidateStats(ctx, input.OwnerID)
	s.logger.Info().
		Str("tracking_number", created.TrackingNumber).
		Str("owner_user_id", input.OwnerID).
		Msg("shipment created")

	return created, nil
}

// List returns one page of the owner's shipments, newest first. An invalid
// status filter is silently ignored.
func (s *ShipmentService) List(ctx context.Context, input ports.ListShipmentsInput) (*ports.ListShipmentsResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := ports.ListShipmentsFilter{
		OwnerID:  input.OwnerID,
		Search:   strings.TrimSpace(input.Search),
		Page:     page,
		PageSize: pageSize,
	}
	if input.Status != "" {
		if st := domain.ShipmentStatus(input.Status); st.Valid() {
			filter.Status = st
		} else {
			s.logger.Debug().Str("status", input.Status).Msg("ignoring invalid status filter")
		}
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &ports.ListShipmentsResult{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *ShipmentService) GetByID(ctx context.Context, ownerID, id string) (*domain.Shipment, error) {
	return s.repo.FindByID(ctx, ownerID, id)
}

// UpdateStatus sets the shipment's status. Only the status field and the
// updated_at timestamp change.
func (s *ShipmentService) UpdateStatus(ctx context.Context, ownerID, id, status string) (*domain.Shipment, error) {
	st := domain.ShipmentStatus(status)
	if !st.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	updated, err := s.repo.UpdateStatus(ctx, ownerID, id, st, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	metrics.StatusUpdatesTotal.WithLabelValues(string(st)).Inc()
	s.invalidateStats(ctx, ownerID)
	s.logger.Info().
		Str("tracking_number", updated.TrackingNumber).
		Str("status", string(st)).
		Msg("shipment status updated")

	return updated, nil
}

func (s *ShipmentService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	metrics.ShipmentsDeletedTotal.Inc()
	s.invalidateStats(ctx, ownerID)
	return nil
}

// Stats returns the owner's shipment counts grouped by status. The result
// is cached; cache failures are logged and never fail the request.
func (s *ShipmentService) Stats(ctx context.Context, ownerID string) (*domain.StatusCounts, error) {
	if cached, err := s.cache.Get(ctx, ownerID); err != nil {
		s.logger.Warn().Err(err).Str("owner_user_id", ownerID).Msg("stats cache read failed")
	} else if cached != nil {
		metrics.StatsCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.StatsCacheTotal.WithLabelValues("miss").Inc()

	byStatus, err := s.repo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	counts := &domain.StatusCounts{
		Pending:   byStatus[domain.StatusPending],
		InTransit: byStatus[domain.StatusInTransit],
		Delivered: byStatus[domain.StatusDelivered],
	}

	if err := s.cache.Set(ctx, ownerID, counts); err != nil {
		s.logger.Warn().Err(err).Str("owner_user_id", ownerID).Msg("stats cache write failed")
	}
	return counts, nil
}

// uniqueTrackingNumber generates candidates until one is unused, giving up
// after trackingAttempts and letting the unique index arbitrate the rest.
func (s *ShipmentService) uniqueTrackingNumber(ctx context.Context) (string, error) {
	candidate := generateTrackingNumber()
	for i := 0; i < trackingAttempts; i++ {
		exists, err := s.repo.ExistsByTrackingNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			break
		}
		candidate = generateTrackingNumber()
	}
	return candidate, nil
}

func (s *ShipmentService) invalidateStats(ctx context.Context, ownerID string) {
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		s.logger.Warn().Err(err).Str("owner_user_id", ownerID).Msg("stats cache invalidation failed")
	}
}

const trackingAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// generateTrackingNumber returns a tracking number in the format TRK-XXXXXX
// with six random base-36 uppercase characters.
func generateTrackingNumber() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("TRK-%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	for i := range b {
		b[i] = trackingAlphabet[int(b[i])%len(trackingAlphabet)]
	}
	return "TRK-" + string(b)
}
