package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskapi/internal/models"
)

const principalCtxKey = "principal"

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Error().Msg("authorization header required")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix {
		h.logger.Error().Msg("invalid authorization header")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	principal, err := h.auth.Authenticate(c, parts[1])
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to authenticate request")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.Set(principalCtxKey, principal)
	c.Next()
}

func principalFromContext(c *gin.Context) (models.Principal, bool) {
	value, exists := c.Get(principalCtxKey)
	if !exists {
		return models.Principal{}, false
	}
	principal, ok := value.(models.Principal)
	return principal, ok
}
