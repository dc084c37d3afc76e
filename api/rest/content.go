package rest

import (
	"net/http"

	"github.com/anonto42/React-native-social-media-app/server/content"
	mw "github.com/anonto42/React-native-social-media-app/server/middleware"
	"github.com/anonto42/React-native-social-media-app/server/model"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ContentHandler handles posts, reels and likes.
type ContentHandler struct {
	content *content.Service
	ledger  *content.Ledger
	logger  *zap.Logger
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(svc *content.Service, ledger *content.Ledger, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{content: svc, ledger: ledger, logger: logger}
}

type itemView struct {
	model.ContentItem
	LikedByMe bool `json:"liked_by_me"`
}

// Create handles POST /api/content.
func (h *ContentHandler) Create(c *gin.Context) {
	var req struct {
		Body     string            `json:"body"`
		MediaURL string            `json:"media_url"`
		Kind     model.ContentKind `json:"kind"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	item, err := h.content.Create(c.Request.Context(), mw.GetProfileID(c), req.Body, req.MediaURL, req.Kind)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// Feed handles GET /api/content/feed?kind=&before=&limit=.
func (h *ContentHandler) Feed(c *gin.Context) {
	ctx := c.Request.Context()
	me := mw.GetProfileID(c)
	items, err := h.content.Feed(ctx, me, model.ContentKind(c.Query("kind")), queryInt64(c, "before"), queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ids := lo.Map(items, func(it model.ContentItem, _ int) int64 { return it.ID })
	liked, err := h.ledger.LikedAmong(ctx, me, ids)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	views := lo.Map(items, func(it model.ContentItem, _ int) itemView {
		return itemView{ContentItem: it, LikedByMe: liked[it.ID]}
	})
	resp := gin.H{"items": views}
	if len(items) > 0 {
		resp["next_before"] = items[len(items)-1].ID
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/content/:id.
func (h *ContentHandler) Get(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	item, err := h.content.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	liked, err := h.ledger.IsLiked(ctx, mw.GetProfileID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": itemView{ContentItem: *item, LikedByMe: liked}})
}

// Delete handles DELETE /api/content/:id.
func (h *ContentHandler) Delete(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	if err := h.content.Delete(c.Request.Context(), id, mw.GetProfileID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Like handles POST /api/content/:id/like.
func (h *ContentHandler) Like(c *gin.Context) {
	h.toggle(c, true)
}

// Unlike handles DELETE /api/content/:id/like.
func (h *ContentHandler) Unlike(c *gin.Context) {
	h.toggle(c, false)
}

func (h *ContentHandler) toggle(c *gin.Context, like bool) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	me := mw.GetProfileID(c)
	var err error
	if like {
		err = h.ledger.Like(ctx, me, id)
	} else {
		err = h.ledger.Unlike(ctx, me, id)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	item, err := h.content.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": like, "like_count": item.LikeCount})
}
