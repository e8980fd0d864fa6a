package jobs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/middleware"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/respond"
)

// Handler wires job routes to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs", h.create)
	rg.GET("/jobs", h.list)
	rg.GET("/jobs/:id", h.get)
	rg.PUT("/jobs/:id", h.update)
	rg.PATCH("/jobs/:id/status", h.setStatus)
	rg.POST("/jobs/:id/weights/adjust", h.adjust)
	rg.DELETE("/jobs/:id", h.delete)
}

type jobRequest struct {
	Title                   string  `json:"title"`
	Description             string  `json:"description"`
	RequiredSkills          string  `json:"requiredSkills"`
	MinimumExperience       string  `json:"minimumExperience"`
	PreferredQualifications string  `json:"preferredQualifications"`
	Weights                 Weights `json:"weights"`
	Status                  Status  `json:"status"`
}

func (r jobRequest) toJob(id string) Job {
	return Job{
		ID:                      id,
		Title:                   r.Title,
		Description:             r.Description,
		RequiredSkills:          r.RequiredSkills,
		MinimumExperience:       r.MinimumExperience,
		PreferredQualifications: r.PreferredQualifications,
		Weights:                 r.Weights,
		Status:                  r.Status,
	}
}

func (h *Handler) create(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	job, err := h.Svc.Save(c.Request.Context(), middleware.UserIDFromContext(c), req.toJob(""))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("jobId", job.ID)
	respond.Created(c, job)
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	c.Set("jobId", id)
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	job, err := h.Svc.Save(c.Request.Context(), middleware.UserIDFromContext(c), req.toJob(id))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, job)
}

func (h *Handler) list(c *gin.Context) {
	jobs, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), Status(c.Query("status")))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, jobs)
}

func (h *Handler) get(c *gin.Context) {
	c.Set("jobId", c.Param("id"))
	job, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, job)
}

type statusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) setStatus(c *gin.Context) {
	c.Set("jobId", c.Param("id"))
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := h.Svc.SetStatus(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.Status); err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"id": c.Param("id"), "status": req.Status})
}

type adjustRequest struct {
	Field string `json:"field"`
	Value *int   `json:"value"`
}

func (h *Handler) adjust(c *gin.Context) {
	id := c.Param("id")
	c.Set("jobId", id)
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "field and value are required", nil)
		return
	}
	field, err := ParseField(req.Field)
	if err != nil {
		writeError(c, err)
		return
	}
	job, err := h.Svc.AdjustWeight(c.Request.Context(), middleware.UserIDFromContext(c), id, field, *req.Value)
	if err != nil {
		if errors.Is(err, ErrWeightBudget) {
			respond.Error(c, http.StatusUnprocessableEntity, "weight_budget_exceeded", err.Error(), gin.H{
				"weights":   job.Weights,
				"remaining": job.Weights.Remaining(),
			})
			return
		}
		writeError(c, err)
		return
	}
	respond.OK(c, job)
}

func (h *Handler) delete(c *gin.Context) {
	c.Set("jobId", c.Param("id"))
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
	case errors.Is(err, ErrWeightBudget):
		respond.Error(c, http.StatusUnprocessableEntity, "weight_budget_exceeded", err.Error(), nil)
	case errors.Is(err, ErrInvalidWeight):
		respond.Error(c, http.StatusBadRequest, "invalid_weight", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Internal(c, "job request failed", err)
	}
}
