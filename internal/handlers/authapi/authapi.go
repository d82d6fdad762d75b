// Package authapi exposes the auth service over HTTP: register, login,
// refresh token rotation, logout and profile lookup. Handlers only parse
// requests; all auth semantics live in internal/auth.
package authapi

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/charleshuang3/posterboard/internal/auth"
	"github.com/charleshuang3/posterboard/internal/tokens"
)

var (
	logger = log.With().Str("component", "authapi").Logger()
)

type Handlers struct {
	service *auth.Service
	issuer  tokens.Issuer
}

func NewHandlers(service *auth.Service, issuer tokens.Issuer) *Handlers {
	return &Handlers{
		service: service,
		issuer:  issuer,
	}
}

// RegisterHandlers mounts the auth routes. loginLimit is applied to the
// register and login endpoints only; pass nil to disable.
func (h *Handlers) RegisterHandlers(rg *gin.RouterGroup, loginLimit gin.HandlerFunc) {
	authRoutes := rg.Group("/auth")
	{
		if loginLimit != nil {
			authRoutes.POST("/register", loginLimit, h.handleRegister)
			authRoutes.POST("/login", loginLimit, h.handleLogin)
		} else {
			authRoutes.POST("/register", h.handleRegister)
			authRoutes.POST("/login", h.handleLogin)
		}

		// Refresh and logout take the refresh token as Authorization bearer.
		authRoutes.POST("/refresh", h.handleRefresh)
		authRoutes.POST("/logout", h.handleLogout)

		authRoutes.GET("/profile/:user_id", h.RequireAccessToken(), h.handleProfile)
	}
}

// bearerToken extracts the Authorization bearer value. Absence or a
// malformed prefix is a caller side error.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
