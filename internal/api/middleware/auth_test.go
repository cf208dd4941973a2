package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newAuthContext(e *echo.Echo, header string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	signed := signToken(t, "secret", jwt.MapClaims{
		"user_id": "user_1",
		"email":   "a@x.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	c, rec := newAuthContext(e, "Bearer "+signed)

	called := false
	mw := Auth("secret")
	handler := mw(func(c echo.Context) error {
		called = true
		id, ok := IdentityFromContext(c)
		if !ok {
			t.Fatalf("identity not set")
		}
		if id.UserID != "user_1" || id.Email != "a@x.com" {
			t.Fatalf("unexpected identity: %+v", id)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	c, _ := newAuthContext(e, "")

	mw := Auth("secret")
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	e := echo.New()
	c, _ := newAuthContext(e, "Token abc")

	mw := Auth("secret")
	err := mw(func(c echo.Context) error { return nil })(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	e := echo.New()
	signed := signToken(t, "secret", jwt.MapClaims{
		"user_id": "user_1",
		"email":   "a@x.com",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})

	c, _ := newAuthContext(e, "Bearer "+signed)

	mw := Auth("secret")
	err := mw(func(c echo.Context) error { return nil })(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthMiddleware_WrongSignature(t *testing.T) {
	e := echo.New()
	signed := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": "user_1",
		"email":   "a@x.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	c, _ := newAuthContext(e, "Bearer "+signed)

	mw := Auth("secret")
	err := mw(func(c echo.Context) error { return nil })(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthMiddleware_MissingClaims(t *testing.T) {
	e := echo.New()
	signed := signToken(t, "secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	c, _ := newAuthContext(e, "Bearer "+signed)

	mw := Auth("secret")
	err := mw(func(c echo.Context) error { return nil })(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthMiddleware_MissingSecret(t *testing.T) {
	e := echo.New()
	c, _ := newAuthContext(e, "Bearer whatever")

	mw := Auth("")
	err := mw(func(c echo.Context) error { return nil })(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 HTTPError, got %v", err)
	}
}
