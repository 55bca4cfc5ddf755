// Package web is the HTTP shell around the MCP server: a health
// endpoint, optional bearer-token authentication and the streamable
// HTTP transport mounted at /mcp.
package web

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mark3labs/mcp-go/server"
)

// New builds the echo application. When authToken is empty every
// request passes through unauthenticated — the caller is expected to
// have warned loudly about that. /health is always open so load
// balancers can probe without credentials.
func New(mcpServer *server.MCPServer, authToken string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(bearerAuth(authToken))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	streamable := server.NewStreamableHTTPServer(mcpServer)
	e.Any("/mcp", echo.WrapHandler(streamable))
	e.Any("/mcp/*", echo.WrapHandler(streamable))

	return e
}

// bearerAuth validates the Authorization header on every request except
// /health, using a constant-time comparison. An empty configured token
// disables the check.
func bearerAuth(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/health" || token == "" {
				return next(c)
			}
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			got, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				slog.Warn("unauthorized request",
					"path", c.Request().URL.Path,
					"remote", c.RealIP(),
				)
				return c.String(http.StatusUnauthorized, "unauthorized")
			}
			return next(c)
		}
	}
}
