package rest

import (
	"net/http"

	mw "github.com/anonto42/React-native-social-media-app/server/middleware"
	"github.com/anonto42/React-native-social-media-app/server/profile"
	"github.com/anonto42/React-native-social-media-app/server/social"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SocialHandler handles friendship REST endpoints.
type SocialHandler struct {
	store    *social.Store
	query    *social.Query
	profiles *profile.Service
	logger   *zap.Logger
}

// NewSocialHandler creates a SocialHandler.
func NewSocialHandler(store *social.Store, query *social.Query, profiles *profile.Service, logger *zap.Logger) *SocialHandler {
	return &SocialHandler{store: store, query: query, profiles: profiles, logger: logger}
}

// ListFriends handles GET /api/social/friends.
func (h *SocialHandler) ListFriends(c *gin.Context) {
	friends, err := h.query.ListFriends(c.Request.Context(), mw.GetProfileID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// IncomingRequests handles GET /api/social/requests/incoming.
func (h *SocialHandler) IncomingRequests(c *gin.Context) {
	reqs, err := h.query.ListIncomingRequests(c.Request.Context(), mw.GetProfileID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

// OutgoingRequests handles GET /api/social/requests/outgoing.
func (h *SocialHandler) OutgoingRequests(c *gin.Context) {
	reqs, err := h.query.ListOutgoingRequests(c.Request.Context(), mw.GetProfileID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

// SendRequest handles POST /api/social/requests. The target is given by id or handle.
func (h *SocialHandler) SendRequest(c *gin.Context) {
	var req struct {
		TargetID string `json:"target_id"`
		Handle   string `json:"handle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	var target uuid.UUID
	switch {
	case req.TargetID != "":
		id, err := uuid.Parse(req.TargetID)
		if err != nil {
			badRequest(c, "invalid target_id")
			return
		}
		target = id
	case req.Handle != "":
		p, err := h.profiles.GetByHandle(c.Request.Context(), req.Handle)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		target = p.ID
	default:
		badRequest(c, "target_id or handle is required")
		return
	}

	id, err := h.store.CreateRequest(c.Request.Context(), mw.GetProfileID(c), target)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"relationship_id": id, "status": "pending"})
}

// Accept handles POST /api/social/requests/:id/accept.
func (h *SocialHandler) Accept(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	if err := h.store.Accept(c.Request.Context(), id, mw.GetProfileID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"relationship_id": id, "status": "accepted"})
}

// Terminate handles DELETE /api/social/relationships/:id: reject, cancel or unfriend.
func (h *SocialHandler) Terminate(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	if err := h.store.Terminate(c.Request.Context(), id, mw.GetProfileID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Relationship handles GET /api/social/relationships/:profile_id.
func (h *SocialHandler) Relationship(c *gin.Context) {
	other, ok := paramUUID(c, "profile_id")
	if !ok {
		return
	}
	me := mw.GetProfileID(c)
	rel, err := h.store.FindBetween(c.Request.Context(), me, other)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if rel == nil {
		c.JSON(http.StatusOK, gin.H{"status": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       rel.Status,
		"relationship": rel,
		"outgoing":     rel.RequesterID == me,
	})
}

// Search handles GET /api/social/search?q=&limit=.
func (h *SocialHandler) Search(c *gin.Context) {
	results, err := h.query.SearchProfiles(c.Request.Context(), c.Query("q"), mw.GetProfileID(c), queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
