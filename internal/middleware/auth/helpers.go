package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const bearerPrefix = "Bearer "

// BearerToken extracts the token from the standard Authorization header
// shape. An absent or malformed header yields ok=false.
func BearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	tok := strings.TrimPrefix(header, bearerPrefix)
	if tok == "" {
		return "", false
	}
	return tok, true
}
