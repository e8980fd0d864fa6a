package preview

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/middleware"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/respond"
)

// Handler serves registered previews.
type Handler struct {
	Registry *Registry
}

// NewHandler constructs a preview handler.
func NewHandler(reg *Registry) *Handler {
	return &Handler{Registry: reg}
}

// RegisterRoutes attaches preview routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/previews/:id", h.get)
}

func (h *Handler) get(c *gin.Context) {
	item, err := h.Registry.Open(middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "preview not found or expired", nil)
		return
	}

	if c.Query("text") == "1" {
		text, err := Snippet(item.MediaType, item.Data)
		if err != nil {
			if errors.Is(err, ErrUnsupported) {
				respond.Error(c, http.StatusUnprocessableEntity, "unsupported", "no text preview for this document", nil)
				return
			}
			respond.Error(c, http.StatusUnprocessableEntity, "unreadable", "document text could not be read", nil)
			return
		}
		respond.OK(c, gin.H{"id": item.ID, "fileName": item.Name, "text": text})
		return
	}

	c.Header("Content-Disposition", "inline; filename=\""+item.Name+"\"")
	c.Header("Content-Length", strconv.Itoa(len(item.Data)))
	c.Data(http.StatusOK, item.MediaType, item.Data)
}
