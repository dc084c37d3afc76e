package rest

import (
	"net/http"

	"github.com/anonto42/React-native-social-media-app/server/content"
	"github.com/anonto42/React-native-social-media-app/server/scheduler"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	reconciler *content.Reconciler
	sched      *scheduler.Scheduler
	logger     *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(reconciler *content.Reconciler, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{reconciler: reconciler, sched: sched, logger: logger}
}

// Reconcile repairs like counters that drifted from the like ledger.
// POST /api/admin/reconcile             every drifted item
// POST /api/admin/reconcile?content_id= a single item
func (h *AdminHandler) Reconcile(c *gin.Context) {
	ctx := c.Request.Context()
	if id := queryInt64(c, "content_id"); id > 0 {
		drifted, err := h.reconciler.Reconcile(ctx, id)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"content_id": id, "repaired": drifted})
		return
	}

	drifts, err := h.reconciler.ReconcileAll(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.Info("admin reconciled like counters", zap.Int("repaired", len(drifts)))
	c.JSON(http.StatusOK, gin.H{"repaired": drifts, "count": len(drifts)})
}

// ListSchedulerTasks returns the status of every background task.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.Status()})
}

// AdminAuth returns middleware that validates the X-Admin-Key header.
// If adminKey is empty, all admin requests are rejected with 503.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if key != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
