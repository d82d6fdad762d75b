package authapi

import (
	"github.com/gin-gonic/gin"

	"github.com/charleshuang3/posterboard/internal/errs"
	"github.com/charleshuang3/posterboard/internal/handlers/render"
)

const contextUserIDKey = "auth.user_id"

// RequireAccessToken verifies the Authorization bearer access token and puts
// the verified identity into the request context. Handlers behind it read
// the identity with UserIDFromContext; there is no ambient request state.
func (h *Handlers) RequireAccessToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			render.Error(c, errs.InvalidAccessToken())
			return
		}

		userID, err := h.issuer.VerifyAccess(token)
		if err != nil {
			render.Error(c, errs.InvalidAccessToken())
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

// UserIDFromContext returns the identity stored by RequireAccessToken.
func UserIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	userID, ok := v.(uint64)
	return userID, ok
}
