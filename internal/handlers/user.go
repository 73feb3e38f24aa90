package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/service"
)

type UserHandler struct {
	Svc *service.AuthService
}

// Me returns the authenticated subject's sanitized record. The token was
// already checked by the middleware; a valid token whose subject row has
// since been deleted yields 404, not 401.
func (h *UserHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_me")

	userID, ok := c.Get("userID").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}

	user, err := h.Svc.CurrentUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		l.Error("me_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "An error occurred"})
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user})
}
