package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/anonto42/React-native-social-media-app/server/cache"
	mw "github.com/anonto42/React-native-social-media-app/server/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// defaultRevokeTTL covers tokens that carry no expiry.
const defaultRevokeTTL = 72 * time.Hour

// AuthHandler handles session endpoints. Tokens are issued by the identity
// provider; this service only revokes them.
type AuthHandler struct {
	cache  cache.Cache
	logger *zap.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(c cache.Cache, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{cache: c, logger: logger}
}

// Logout handles POST /api/auth/logout. The bearer token stays revoked until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(mw.TokenKey)
	if token == "" {
		badRequest(c, "missing token")
		return
	}
	ttl := defaultRevokeTTL
	if exp, ok := c.Get(mw.TokenExpKey); ok {
		if remaining := time.Until(exp.(time.Time)); remaining > 0 {
			ttl = remaining
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.cache.Set(ctx, mw.RevokedKey(token), "1", ttl); err != nil {
		h.logger.Error("token revocation failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "logout failed", "code": "store_unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
