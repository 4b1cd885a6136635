package handler

import (
	"errors"
	"net/http"

	"github.com/catatan/catatan/internal/page"
	"github.com/catatan/catatan/internal/page/service"
	"github.com/catatan/catatan/pkg/middleware"
	"github.com/gin-gonic/gin"
)

type createRequest struct {
	Name string `json:"name"`
}

// updateRequest uses pointers so a missing field can be told apart from an
// empty one; all three are required.
type updateRequest struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	DisplayName *string `json:"display_name"`
}

// RegisterPageRoutes mounts the page and trash routes on rg. rg must already
// run middleware.AuthMiddleware.
func RegisterPageRoutes(rg *gin.RouterGroup, svc service.Service) {
	h := &pageHandler{svc: svc}
	rg.GET("/pages", h.withOwner(h.listActive))
	rg.POST("/pages", h.withOwner(h.create))
	rg.GET("/pages/:id", h.withOwner(h.get))
	rg.PUT("/pages/:id", h.withOwner(h.update))
	rg.DELETE("/pages/:id", h.withOwner(h.trash))
	rg.GET("/trash", h.withOwner(h.listTrashed))
	rg.POST("/trash/:id/restore", h.withOwner(h.restore))
	rg.DELETE("/trash/:id/permanent", h.withOwner(h.purge))
}

type pageHandler struct {
	svc service.Service
}

type ownerHandler func(c *gin.Context, owner string)

// withOwner resolves the caller; no route runs without one.
func (h *pageHandler) withOwner(next ownerHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middleware.IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		next(c, id.ID)
	}
}

// writeError maps page errors onto status codes. Messages are generic so a
// caller cannot learn anything about pages it does not own.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, page.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
	case errors.Is(err, page.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "page is already in the trash"})
	case errors.Is(err, page.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *pageHandler) listActive(c *gin.Context, owner string) {
	list, err := h.svc.ListActive(c.Request.Context(), owner)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *pageHandler) listTrashed(c *gin.Context, owner string) {
	list, err := h.svc.ListTrashed(c.Request.Context(), owner)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *pageHandler) get(c *gin.Context, owner string) {
	p, err := h.svc.Get(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *pageHandler) create(c *gin.Context, owner string) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sum, err := h.svc.Create(c.Request.Context(), owner, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sum)
}

func (h *pageHandler) update(c *gin.Context, owner string) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Title == nil || req.Content == nil || req.DisplayName == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, content and display_name are required"})
		return
	}
	id := c.Param("id")
	e := page.Edit{Title: *req.Title, Content: *req.Content, DisplayName: *req.DisplayName}
	if err := h.svc.Update(c.Request.Context(), owner, id, e); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *pageHandler) trash(c *gin.Context, owner string) {
	if err := h.svc.Trash(c.Request.Context(), owner, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *pageHandler) restore(c *gin.Context, owner string) {
	id := c.Param("id")
	if err := h.svc.Restore(c.Request.Context(), owner, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *pageHandler) purge(c *gin.Context, owner string) {
	if err := h.svc.Purge(c.Request.Context(), owner, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
