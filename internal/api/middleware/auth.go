package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// identityKey is the Echo context key the Identity is stored under.
const identityKey = "identity"

// Identity is the authenticated caller decoded from a verified token.
type Identity struct {
	UserID string
	Email  string
}

// Auth validates the bearer token and injects the caller's Identity into the
// request context. All verification failures answer with the same generic
// 401 so the caller learns nothing about why the token was rejected.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if jwtSecret == "" {
				return echo.NewHTTPError(http.StatusInternalServerError, "server misconfigured")
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			userID, _ := claims["user_id"].(string)
			email, _ := claims["email"].(string)
			if userID == "" || email == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(identityKey, Identity{UserID: userID, Email: email})

			return next(c)
		}
	}
}

// IdentityFromContext returns the Identity set by Auth, if any.
func IdentityFromContext(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}
