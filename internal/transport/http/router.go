package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/handlers"
	authmw "github.com/Skotchmaster/auth_service/internal/middleware/auth"
)

type Deps struct {
	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler
	AuthMW      *authmw.RequireAuth
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup)
	auth.POST("/login", d.AuthHandler.Login)
	// Logout checks the header itself: a garbage token still logs out
	// successfully, which RequireLogin would reject.
	auth.POST("/logout", d.AuthHandler.Logout)

	user := e.Group("/user", d.AuthMW.RequireLogin)
	user.GET("/me", d.UserHandler.Me)
}
