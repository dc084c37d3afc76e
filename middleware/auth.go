package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/React-native-social-media-app/server/cache"
	"github.com/anonto42/React-native-social-media-app/server/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ProfileIDKey = "profile_id"
	TokenKey     = "bearer_token"
	TokenExpKey  = "token_expires_at"
)

// RevokedKey is the cache key marking a bearer token as logged out.
func RevokedKey(token string) string { return "revoked:" + token }

// Auth validates the Bearer JWT and rejects tokens revoked through logout.
func Auth(sec config.SecurityConfig, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims, err := ParseToken(tokenStr, sec.JWTSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		profileID, err := claims.ProfileID()
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		cacheCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		revoked, err := c.Exists(cacheCtx, RevokedKey(tokenStr))
		if err != nil || revoked {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		ctx.Set(ProfileIDKey, profileID)
		ctx.Set(TokenKey, tokenStr)
		if claims.ExpiresAt != nil {
			ctx.Set(TokenExpKey, claims.ExpiresAt.Time)
		}
		ctx.Next()
	}
}

// GetProfileID retrieves the authenticated profile id from the Gin context.
func GetProfileID(c *gin.Context) uuid.UUID {
	if v, exists := c.Get(ProfileIDKey); exists {
		return v.(uuid.UUID)
	}
	return uuid.Nil
}
