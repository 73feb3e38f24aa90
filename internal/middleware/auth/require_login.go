package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/service"
)

type RequireAuth struct {
	Svc *service.AuthService
}

func NewRequireAuth(svc *service.AuthService) *RequireAuth {
	return &RequireAuth{Svc: svc}
}

// RequireLogin gates protected routes. Missing header, revoked token, bad
// signature and expired token all produce the same 401 so a caller cannot
// probe which check failed.
func (m *RequireAuth) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := BearerToken(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}

		claims, err := m.Svc.Authorize(c.Request().Context(), raw)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			logging.FromContext(c.Request().Context()).Error("authorize_error", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		return next(c)
	}
}
