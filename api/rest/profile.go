package rest

import (
	"net/http"

	mw "github.com/anonto42/React-native-social-media-app/server/middleware"
	"github.com/anonto42/React-native-social-media-app/server/profile"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileHandler handles profile REST endpoints.
type ProfileHandler struct {
	profiles *profile.Service
	logger   *zap.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles *profile.Service, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// Ensure handles POST /api/profiles/me. The first call creates the profile.
func (h *ProfileHandler) Ensure(c *gin.Context) {
	var req struct {
		Handle      string `json:"handle" binding:"required"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, created, err := h.profiles.Ensure(c.Request.Context(), mw.GetProfileID(c), req.Handle, req.DisplayName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"profile": p})
}

// Me handles GET /api/profiles/me.
func (h *ProfileHandler) Me(c *gin.Context) {
	p, err := h.profiles.Get(c.Request.Context(), mw.GetProfileID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// Update handles PATCH /api/profiles/me.
func (h *ProfileHandler) Update(c *gin.Context) {
	var patch profile.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err.Error())
		return
	}
	me := mw.GetProfileID(c)
	p, err := h.profiles.Update(c.Request.Context(), me, me, patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// ByHandle handles GET /api/profiles/:handle.
func (h *ProfileHandler) ByHandle(c *gin.Context) {
	p, err := h.profiles.GetByHandle(c.Request.Context(), c.Param("handle"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}
