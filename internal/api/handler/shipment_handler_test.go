package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trackline/shipment-tracker/internal/api/middleware"
	"github.com/trackline/shipment-tracker/internal/core/domain"
	"github.com/trackline/shipment-tracker/internal/core/ports"
)

const testOwnerID = "aaaaaaaaaaaaaaaaaaaaaaaa"
const testShipmentID = "cccccccccccccccccccccccc"

type stubShipmentService struct {
	createFn       func(ctx context.Context, input ports.CreateShipmentInput) (*domain.Shipment, error)
	listFn         func(ctx context.Context, input ports.ListShipmentsInput) (*ports.ListShipmentsResult, error)
	getFn          func(ctx context.Context, ownerID, id string) (*domain.Shipment, error)
	updateStatusFn func(ctx context.Context, ownerID, id, status string) (*domain.Shipment, error)
	deleteFn       func(ctx context.Context, ownerID, id string) error
	statsFn        func(ctx context.Context, ownerID string) (*domain.StatusCounts, error)
}

func (s *stubShipmentService) Create(ctx context.Context, input ports.CreateShipmentInput) (*domain.Shipment, error) {
	return s.createFn(ctx, input)
}

func (s *stubShipmentService) List(ctx context.Context, input ports.ListShipmentsInput) (*ports.ListShipmentsResult, error) {
	return s.listFn(ctx, input)
}

func (s *stubShipmentService) GetByID(ctx context.Context, ownerID, id string) (*domain.Shipment, error) {
	return s.getFn(ctx, ownerID, id)
}

func (s *stubShipmentService) UpdateStatus(ctx context.Context, ownerID, id, status string) (*domain.Shipment, error) {
	return s.updateStatusFn(ctx, ownerID, id, status)
}

func (s *stubShipmentService) Delete(ctx context.Context, ownerID, id string) error {
	return s.deleteFn(ctx, ownerID, id)
}

func (s *stubShipmentService) Stats(ctx context.Context, ownerID string) (*domain.StatusCounts, error) {
	return s.statsFn(ctx, ownerID)
}

// authedContext builds a context carrying the identity the Auth middleware
// would have injected.
func authedContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("identity", middleware.Identity{UserID: testOwnerID, Email: "a@x.com"})
	return c, rec
}

func sampleShipment() *domain.Shipment {
	now := time.Now().UTC()
	return &domain.Shipment{
		ID:              testShipmentID,
		OwnerUserID:     testOwnerID,
		TrackingNumber:  "TRK-9F2KQ7",
		CustomerName:    "Acme",
		Status:          domain.StatusPending,
		CurrentLocation: "Oslo",
		ETA:             now.Add(48 * time.Hour),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestShipmentHandler_Create_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubShipmentService{
		createFn: func(ctx context.Context, input ports.CreateShipmentInput) (*domain.Shipment, error) {
			if input.OwnerID != testOwnerID {
				t.Fatalf("owner must come from identity, got %q", input.OwnerID)
			}
			if input.CustomerName != "Acme" || input.CurrentLocation != "Oslo" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return sampleShipment(), nil
		},
	}
	handler := NewShipmentHandler(stub)

	body := `{"customerName":"Acme","currentLocation":"Oslo","eta":"2030-01-02T15:04:05Z"}`
	c, rec := authedContext(e, http.MethodPost, "/shipments", body)

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["trackingNumber"] != "TRK-9F2KQ7" || resp["status"] != "Pending" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestShipmentHandler_Create_ValidationErrors(t *testing.T) {
	e := newTestEcho()
	stub := &stubShipmentService{
		createFn: func(ctx context.Context, input ports.CreateShipmentInput) (*domain.Shipment, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewShipmentHandler(stub)

	cases := []struct {
		name string
		body string
	}{
		{"short customer name", `{"customerName":"A","currentLocation":"Oslo","eta":"2030-01-02T15:04:05Z"}`},
		{"missing eta", `{"customerName":"Acme","currentLocation":"Oslo"}`},
		{"bad status", `{"customerName":"Acme","currentLocation":"Oslo","eta":"2030-01-02T15:04:05Z","status":"Shipped"}`},
		{"short tracking number", `{"customerName":"Acme","currentLocation":"Oslo","eta":"2030-01-02T15:04:05Z","trackingNumber":"AB"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := authedContext(e, http.MethodPost, "/shipments", tc.body)

			err := handler.Create(c)
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 HTTPError, got %v", err)
			}
		})
	}
}

func TestShipmentHandler_List_PassesQueryParams(t *testing.T) {
	e := newTestEcho()
	stub := &stubShipmentService{
		listFn: func(ctx context.Context, input ports.ListShipmentsInput) (*ports.ListShipmentsResult, error) {
			if input.OwnerID != testOwnerID {
				t.Fatalf("owner must come from identity, got %q", input.OwnerID)
			}
			if input.Page != 2 || input.PageSize != 25 || input.Status != "Pending" || input.Search != "oslo" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.ListShipmentsResult{
				Items:      []*domain.Shipment{sampleShipment()},
				Page:       2,
				PageSize:   25,
				Total:      26,
				TotalPages: 2,
			}, nil
		},
	}
	handler := NewShipmentHandler(stub)

	c, rec := authedContext(e, http.MethodGet, "/shipments?page=2&pageSize=25&status=Pending&q=oslo", "")

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["total"] != float64(26) || resp["totalPages"] != float64(2) {
		t.Fatalf("unexpected pagination: %+v", resp)
	}
	items, ok := resp["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected one item, got %+v", resp["items"])
	}
}

func TestShipmentHandler_Get_MalformedID(t *testing.T) {
	e := newTestEcho()
	stub := &stubShipmentService{
		getFn: func(ctx context.Context, ownerID, id string) (*domain.Shipment, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewShipmentHandler(stub)

	c, _ := authedContext(e, http.MethodGet, "/shipments/not-an-id", "")
	c.SetParamNames("id")
	c.SetParamValues("not-an-id")

	if err := handler.Get(c); !errors.Is(err, domain.ErrInvalidShipmentID) {
		t.Fatalf("expected ErrInvalidShipmentID, got %v", err)
	}
}

func TestShipmentHandler_UpdateStatus_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubShipmentService{
		updateStatusFn: func(ctx context.Context, ownerID, id, status string) (*domain.Shipment, error) {
			if ownerID != testOwnerID || id != testShipmentID || status != "Delivered" {
				t.Fatalf("unexpected args: %s %s %s", ownerID, id, status)
			}
			s := sampleShipment()
			s.Status = domain.StatusDelivered
			return s, nil
		},
	}
	handler := NewShipmentHandler(stub)

	c, rec := authedContext(e, http.MethodPatch, "/shipments/"+testShipmentID+"/status", `{"status":"Delivered"}`)
	c.SetParamNames("id")
	c.SetParamValues(testShipmentID)

	if err := handler.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "Delivered" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestShipmentHandler_UpdateStatus_InvalidValue(t *testing.T) {
	e := newTestEcho()
	stub := &stubShipmentService{
		updateStatusFn: func(ctx context.Context, ownerID, id, status string) (*domain.Shipment, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewShipmentHandler(stub)

	c, _ := authedContext(e, http.MethodPatch, "/shipments/"+testShipmentID+"/status", `{"status":"Shipped"}`)
	c.SetParamNames("id")
	c.SetParamValues(testShipmentID)

	err := handler.UpdateStatus(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestShipmentHandler_Delete_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubShipmentService{
		deleteFn: func(ctx context.Context, ownerID, id string) error {
			if ownerID != testOwnerID || id != testShipmentID {
				t.Fatalf("unexpected args: %s %s", ownerID, id)
			}
			return nil
		},
	}
	handler := NewShipmentHandler(stub)

	c, rec := authedContext(e, http.MethodDelete, "/shipments/"+testShipmentID, "")
	c.SetParamNames("id")
	c.SetParamValues(testShipmentID)

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestShipmentHandler_Delete_NotFound(t *testing.T) {
	e := newTestEcho()
	stub := &stubShipmentService{
		deleteFn: func(ctx context.Context, ownerID, id string) error {
			return domain.ErrShipmentNotFound
		},
	}
	handler := NewShipmentHandler(stub)

	c, _ := authedContext(e, http.MethodDelete, "/shipments/"+testShipmentID, "")
	c.SetParamNames("id")
	c.SetParamValues(testShipmentID)

	if err := handler.Delete(c); !errors.Is(err, domain.ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound, got %v", err)
	}
}

func TestShipmentHandler_Stats(t *testing.T) {
	e := newTestEcho()
	stub := &stubShipmentService{
		statsFn: func(ctx context.Context, ownerID string) (*domain.StatusCounts, error) {
			if ownerID != testOwnerID {
				t.Fatalf("owner must come from identity, got %q", ownerID)
			}
			return &domain.StatusCounts{Pending: 1}, nil
		},
	}
	handler := NewShipmentHandler(stub)

	c, rec := authedContext(e, http.MethodGet, "/shipments/stats", "")

	if err := handler.Stats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["Pending"] != float64(1) || resp["InTransit"] != float64(0) || resp["Delivered"] != float64(0) {
		t.Fatalf("expected all three statuses with zero fill, got %+v", resp)
	}
}

func TestShipmentHandler_MissingIdentity(t *testing.T) {
	e := newTestEcho()
	handler := NewShipmentHandler(&stubShipmentService{})

	req := httptest.NewRequest(http.MethodGet, "/shipments/stats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Stats(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
