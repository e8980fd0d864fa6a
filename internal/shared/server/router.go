package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/documents"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/interviews"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/intake"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/jobs"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/preview"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/rankings"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/services/health"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/config"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/metrics"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/middleware"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server/respond"
)

// RouterDeps carries the handlers mounted under /api/v1. Nil handlers are skipped.
type RouterDeps struct {
	Config           config.Config
	Health           *health.Service
	IntakeHandler    *intake.Handler
	PreviewHandler   *preview.Handler
	DocumentHandler  *documents.Handler
	JobHandler       *jobs.Handler
	RankingHandler   *rankings.Handler
	InterviewHandler *interviews.Handler
	RateLimit        *middleware.RateLimitConfig
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	rl := middleware.DefaultRateLimitConfig()
	if deps.RateLimit != nil {
		rl = *deps.RateLimit
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(rl),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil, deps.Config.ObjectStoreType)
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		st := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	api.GET("/metrics", metrics.Handler())
	registerMeRoutes(api)

	if deps.IntakeHandler != nil {
		deps.IntakeHandler.RegisterRoutes(api)
	}
	if deps.PreviewHandler != nil {
		deps.PreviewHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.JobHandler != nil {
		deps.JobHandler.RegisterRoutes(api)
	}
	if deps.RankingHandler != nil {
		deps.RankingHandler.RegisterRoutes(api)
	}
	if deps.InterviewHandler != nil {
		deps.InterviewHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
