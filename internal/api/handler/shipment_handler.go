package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trackline/shipment-tracker/internal/core/domain"
	"github.com/trackline/shipment-tracker/internal/core/ports"
)

// ShipmentHandler handles HTTP requests for shipment operations.
type ShipmentHandler struct {
	service ports.ShipmentService
}

func NewShipmentHandler(service ports.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// Create handles POST /shipments.
//
// @Summary      Create a new shipment
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createShipmentRequest  true  "Shipment details"
// @Success      201   {object}  shipmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /shipments [post]
func (h *ShipmentHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createShipmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.service.Create(c.Request().Context(), toCreateInput(req, id.UserID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toShipmentResponse(created))
}

// List handles GET /shipments.
//
// @Summary      List the caller's shipments
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int     false  "Page number (1-based)"
// @Param        pageSize  query     int     false  "Page size (1-50)"
// @Param        status    query     string  false  "Status filter"
// @Param        q         query     string  false  "Free-text search"
// @Success      200       {object}  listShipmentsResponse
// @Failure      401       {object}  errorResponse
// @Router       /shipments [get]
func (h *ShipmentHandler) List(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))

	result, err := h.service.List(c.Request().Context(), ports.ListShipmentsInput{
		OwnerID:  id.UserID,
		Status:   c.QueryParam("status"),
		Search:   c.QueryParam("q"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListResponse(result))
}

// Get handles GET /shipments/:id.
//
// @Summary      Get a shipment by id
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Shipment id"
// @Success      200  {object}  shipmentResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /shipments/{id} [get]
func (h *ShipmentHandler) Get(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	shipmentID, err := pathShipmentID(c)
	if err != nil {
		return err
	}

	shipment, err := h.service.GetByID(c.Request().Context(), id.UserID, shipmentID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toShipmentResponse(shipment))
}

// UpdateStatus handles PATCH /shipments/:id/status.
//
// @Summary      Update a shipment's status
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Shipment id"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  shipmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /shipments/{id}/status [patch]
func (h *ShipmentHandler) UpdateStatus(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	shipmentID, err := pathShipmentID(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.service.UpdateStatus(c.Request().Context(), id.UserID, shipmentID, req.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toShipmentResponse(updated))
}

// Delete handles DELETE /shipments/:id.
//
// @Summary      Delete a shipment
// @Tags         shipments
// @Security     BearerAuth
// @Param        id  path  string  true  "Shipment id"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /shipments/{id} [delete]
func (h *ShipmentHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	shipmentID, err := pathShipmentID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id.UserID, shipmentID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Stats handles GET /shipments/stats.
//
// @Summary      Per-status shipment counts for the caller
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Failure      401  {object}  errorResponse
// @Router       /shipments/stats [get]
func (h *ShipmentHandler) Stats(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	counts, err := h.service.Stats(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toStatsResponse(counts))
}

// pathShipmentID rejects malformed ids at the boundary so the persistence
// layer only ever sees well-formed ObjectIDs.
func pathShipmentID(c echo.Context) (string, error) {
	id := c.Param("id")
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return "", domain.ErrInvalidShipmentID
	}
	return id, nil
}
