package interviews

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/jobs"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/middleware"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/respond"
)

// Handler wires interview email routes.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches interview routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs/:id/interviews", h.send)
}

type sendRequest struct {
	Recipients []string    `json:"recipients"`
	Candidates []Candidate `json:"candidates"`
}

func (h *Handler) send(c *gin.Context) {
	id := c.Param("id")
	c.Set("jobId", id)

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "body must be JSON with recipients and candidates", nil)
		return
	}

	res, err := h.Svc.Send(c.Request.Context(), middleware.UserIDFromContext(c), SendRequest{
		JobID:      id,
		Recipients: req.Recipients,
		Candidates: req.Candidates,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, res)
}

func writeError(c *gin.Context, err error) {
	var mailErr *MailError
	switch {
	case errors.Is(err, ErrNoRecipients), errors.Is(err, ErrInvalidRecipient), errors.Is(err, ErrNoCandidates):
		respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
	case errors.Is(err, jobs.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
	case errors.Is(err, ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "mail_unavailable", err.Error(), nil)
	case errors.As(err, &mailErr):
		respond.Error(c, http.StatusBadGateway, "mail_failed", "mail provider rejected the message", gin.H{"status": mailErr.Status})
	default:
		respond.Internal(c, "send interview email failed", err)
	}
}
