package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/middleware"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/respond"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/storage/object"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
	rg.GET("/documents/by-path", h.byPath)
	rg.GET("/documents/:id/url", h.signedURL)
	rg.GET("/documents/:id/download", h.download)
	rg.DELETE("/documents/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	recs, err := h.Svc.List(c.Request.Context(), userID, c.Query("name"), limit, offset)
	if err != nil {
		respond.Internal(c, "failed to list documents", err)
		return
	}
	resp := make([]RecordResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, toResponse(rec))
	}
	respond.OK(c, resp)
}

func (h *Handler) byPath(c *gin.Context) {
	rec, err := h.Svc.GetByPath(c.Request.Context(), middleware.UserIDFromContext(c), c.Query("path"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(rec))
}

func (h *Handler) signedURL(c *gin.Context) {
	ctx := c.Request.Context()
	rec, err := h.Svc.Get(ctx, middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	url, expiresAt, err := h.Svc.SignedURL(ctx, rec)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"url": url, "expiresAt": expiresAt})
}

func (h *Handler) download(c *gin.Context) {
	ctx := c.Request.Context()
	rec, err := h.Svc.Get(ctx, middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	body, err := h.Svc.Open(ctx, rec)
	if err != nil {
		writeError(c, err)
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", "attachment; filename=\""+rec.FileName+"\"")
	c.Header("Content-Type", rec.ContentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound), errors.Is(err, object.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrSigningUnsupported):
		respond.Error(c, http.StatusNotImplemented, "signing_unsupported", "signed URLs require the s3 or minio store", nil)
	default:
		respond.Internal(c, "document request failed", err)
	}
}
