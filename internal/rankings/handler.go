package rankings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/jobs"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/middleware"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/respond"
)

// Handler wires ranking routes.
type Handler struct {
	Svc        *Service
	Dispatcher *Dispatcher
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, d *Dispatcher) *Handler {
	return &Handler{Svc: svc, Dispatcher: d}
}

// RegisterRoutes attaches ranking routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs/:id/rank", h.rank)
	rg.GET("/jobs/:id/matches", h.matches)
}

// rank re-ranks a job. With ?wait=1 the call runs inline and reports the entry count.
func (h *Handler) rank(c *gin.Context) {
	id := c.Param("id")
	c.Set("jobId", id)
	ctx := c.Request.Context()
	job, err := h.Svc.Jobs.Get(ctx, middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	if c.Query("wait") == "1" {
		n, err := h.Svc.Rank(ctx, job)
		if err != nil {
			writeError(c, err)
			return
		}
		respond.OK(c, gin.H{"jobId": id, "entries": n})
		return
	}

	if err := h.Dispatcher.Trigger(ctx, job); err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusAccepted, gin.H{"jobId": id, "status": "queued"})
}

func (h *Handler) matches(c *gin.Context) {
	id := c.Param("id")
	c.Set("jobId", id)
	matches, err := h.Svc.Matches(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"jobId": id, "matches": matches})
}

func writeError(c *gin.Context, err error) {
	var callErr *CallError
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
	case errors.Is(err, ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "ranking_unavailable", err.Error(), nil)
	case errors.As(err, &callErr):
		respond.Error(c, http.StatusBadGateway, "ranking_failed", "ranking service call failed", gin.H{"status": callErr.Status})
	default:
		respond.Internal(c, "ranking request failed", err)
	}
}
