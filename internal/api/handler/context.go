package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trackline/shipment-tracker/internal/api/middleware"
)

// ctxIdentity extracts the authenticated identity injected by the Auth
// middleware and fast-fails before any service call: a missing or incomplete
// identity means the middleware did not run or the token payload was
// unusable, so the request is rejected with 401.
func ctxIdentity(c echo.Context) (middleware.Identity, error) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok || id.UserID == "" {
		return middleware.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
