package rest

import (
	"net/http"

	"github.com/anonto42/React-native-social-media-app/server/cache"
	"github.com/anonto42/React-native-social-media-app/server/config"
	"github.com/anonto42/React-native-social-media-app/server/content"
	"github.com/anonto42/React-native-social-media-app/server/messaging"
	mw "github.com/anonto42/React-native-social-media-app/server/middleware"
	"github.com/anonto42/React-native-social-media-app/server/profile"
	"github.com/anonto42/React-native-social-media-app/server/scheduler"
	"github.com/anonto42/React-native-social-media-app/server/social"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Deps is everything the HTTP surface calls into.
type Deps struct {
	Config     *config.Config
	Cache      cache.Cache
	Profiles   *profile.Service
	Store      *social.Store
	Query      *social.Query
	Content    *content.Service
	Ledger     *content.Ledger
	Reconciler *content.Reconciler
	Messages   *messaging.Service
	Scheduler  *scheduler.Scheduler
	Logger     *zap.Logger
}

// RegisterRoutes mounts /health, /metrics and the /api tree on r.
func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", mw.IPWhitelist(cfg.Server.AdminIPs), gin.WrapH(promhttp.Handler()))

	authH := NewAuthHandler(d.Cache, d.Logger)
	profileH := NewProfileHandler(d.Profiles, d.Logger)
	socialH := NewSocialHandler(d.Store, d.Query, d.Profiles, d.Logger)
	contentH := NewContentHandler(d.Content, d.Ledger, d.Logger)
	msgH := NewMessageHandler(d.Messages, d.Logger)
	adminH := NewAdminHandler(d.Reconciler, d.Scheduler, d.Logger)

	api := r.Group("/api")

	authed := api.Group("", mw.Auth(cfg.Security, d.Cache))
	if cfg.Security.RateLimitRPS > 0 {
		authed.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst, mw.ByProfile))
	}
	{
		authed.POST("/auth/logout", authH.Logout)

		profilesG := authed.Group("/profiles")
		profilesG.POST("/me", profileH.Ensure)
		profilesG.GET("/me", profileH.Me)
		profilesG.PATCH("/me", profileH.Update)
		profilesG.GET("/:handle", profileH.ByHandle)

		socialG := authed.Group("/social")
		socialG.GET("/friends", socialH.ListFriends)
		socialG.GET("/requests/incoming", socialH.IncomingRequests)
		socialG.GET("/requests/outgoing", socialH.OutgoingRequests)
		socialG.POST("/requests", socialH.SendRequest)
		socialG.POST("/requests/:id/accept", socialH.Accept)
		socialG.DELETE("/relationships/:id", socialH.Terminate)
		socialG.GET("/relationships/:profile_id", socialH.Relationship)
		socialG.GET("/search", socialH.Search)

		contentG := authed.Group("/content")
		contentG.POST("", contentH.Create)
		contentG.GET("/feed", contentH.Feed)
		contentG.GET("/:id", contentH.Get)
		contentG.DELETE("/:id", contentH.Delete)
		contentG.POST("/:id/like", contentH.Like)
		contentG.DELETE("/:id/like", contentH.Unlike)

		msgG := authed.Group("/messages")
		msgG.POST("", msgH.Send)
		msgG.GET("/unread", msgH.Unread)
		msgG.GET("/:profile_id", msgH.Conversation)
		msgG.POST("/:id/read", msgH.MarkRead)
	}

	adminG := api.Group("/admin", mw.IPWhitelist(cfg.Server.AdminIPs), AdminAuth(cfg.Server.AdminKey))
	adminG.POST("/reconcile", adminH.Reconcile)
	adminG.GET("/scheduler", adminH.ListSchedulerTasks)
}
