package intake

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/requestctx"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/middleware"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/respond"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/util"
)

const (
	maxUploadSize = 50 << 20
	maxFiles      = 200
)

// Handler wires intake HTTP routes to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches intake routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/intake/documents", h.add)
	rg.GET("/intake/documents", h.list)
	rg.DELETE("/intake/documents/:id", h.remove)
	rg.POST("/intake/process", h.process)
	rg.POST("/intake/commit", h.commit)
}

func (h *Handler) add(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form with files is required", nil)
		return
	}
	headers := form.File["files"]
	headers = append(headers, form.File["file"]...)
	if len(headers) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "files is required", nil)
		return
	}
	if len(headers) > maxFiles {
		respond.Error(c, http.StatusBadRequest, "validation_error", "too many files", gin.H{"max": maxFiles})
		return
	}

	uploads := make([]Upload, 0, len(headers))
	var rejected []Skipped
	for _, fh := range headers {
		name, err := util.SanitizeFileName(util.BaseName(fh.Filename))
		if err != nil {
			rejected = append(rejected, Skipped{FileName: fh.Filename, Reason: "invalid file name"})
			continue
		}
		f, err := fh.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", gin.H{"fileName": name})
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", gin.H{"fileName": name})
			return
		}
		uploads = append(uploads, Upload{Name: name, MediaType: fh.Header.Get("Content-Type"), Data: data})
	}

	res := h.Svc.Workspace.Add(userID, uploads)
	res.Skipped = append(res.Skipped, rejected...)
	c.Set("documentCount", len(res.Added))
	respond.Created(c, res)
}

func (h *Handler) list(c *gin.Context) {
	docs := h.Svc.Workspace.List(middleware.UserIDFromContext(c))
	if docs == nil {
		docs = []Document{}
	}
	respond.OK(c, gin.H{"documents": docs})
}

func (h *Handler) remove(c *gin.Context) {
	if _, ok := h.Svc.Workspace.Remove(middleware.UserIDFromContext(c), c.Param("id")); !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		return
	}
	respond.NoContent(c)
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

func bindIDs(c *gin.Context) ([]string, bool) {
	var req idsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return nil, false
		}
	}
	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, true
}

func (h *Handler) process(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	ids, ok := bindIDs(c)
	if !ok {
		return
	}

	if c.Query("stream") == "1" {
		h.processStream(c, userID, ids)
		return
	}

	report := h.Svc.Process(c.Request.Context(), userID, ids, nil)
	c.Set("documentCount", report.Attempted)
	respond.OK(c, processResponse(report))
}

// processStream relays batch events as server-sent events.
func (h *Handler) processStream(c *gin.Context, userID string, ids []string) {
	events := make(chan Event, 16)
	gone := c.Request.Context().Done()
	// The batch outlives a dropped connection so results still reach the workspace.
	procCtx := requestctx.Detached(c.Request.Context())
	go func() {
		defer close(events)
		h.Svc.Process(procCtx, userID, ids, func(e Event) {
			select {
			case events <- e:
			case <-gone:
			}
		})
	}()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		e, ok := <-events
		if !ok {
			return false
		}
		if e.Kind == EventDone && e.Report != nil {
			c.Set("documentCount", e.Report.Attempted)
			c.SSEvent(string(e.Kind), processResponse(*e.Report))
			return true
		}
		c.SSEvent(string(e.Kind), e)
		return true
	})
}

func processResponse(r Report) gin.H {
	return gin.H{
		"attempted": r.Attempted,
		"succeeded": r.Succeeded,
		"failed":    r.Failed,
		"outcome":   r.Outcome,
		"message":   r.Summary(),
	}
}

func (h *Handler) commit(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	ids, ok := bindIDs(c)
	if !ok {
		return
	}
	report := h.Svc.Commit(c.Request.Context(), userID, ids)
	c.Set("documentCount", report.Attempted)
	if report.Attempted == 0 {
		respond.Error(c, http.StatusConflict, "nothing_to_commit", "no processed documents to commit", nil)
		return
	}
	respond.OK(c, report)
}
