package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/documents"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/extraction"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/interviews"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/intake"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/jobs"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/preview"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/queue"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/rankings"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/services/health"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/config"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/server"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/storage/db"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/storage/object"
	localstore "github.com/surenganne/cv-scorer-elite-sub000/internal/shared/storage/object/local"
	miniostore "github.com/surenganne/cv-scorer-elite-sub000/internal/shared/storage/object/minio"
	s3store "github.com/surenganne/cv-scorer-elite-sub000/internal/shared/storage/object/s3"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	Previews          *preview.Registry
	DocumentsRepo     documents.Repo
	JobsRepo          jobs.Repo
	RankingStore      rankings.Store
	DocumentsService  *documents.Service
	IntakeService     *intake.Service
	JobsService       *jobs.Service
	RankingService    *rankings.Service
	Dispatcher        *rankings.Dispatcher
	InterviewService  *interviews.Service
	HealthService     *health.Service
	IntakeHandler     *intake.Handler
	PreviewHandler    *preview.Handler
	DocumentsHandler  *documents.Handler
	JobsHandler       *jobs.Handler
	RankingsHandler   *rankings.Handler
	InterviewsHandler *interviews.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		Health:           app.HealthService,
		IntakeHandler:    app.IntakeHandler,
		PreviewHandler:   app.PreviewHandler,
		DocumentHandler:  app.DocumentsHandler,
		JobHandler:       app.JobsHandler,
		RankingHandler:   app.RankingsHandler,
		InterviewHandler: app.InterviewsHandler,
	})

	return app, nil
}

// Close waits for in-process rankings and closes the database.
func (a *App) Close() error {
	if a.Dispatcher != nil {
		a.Dispatcher.Wait()
	}
	if a.DB != nil && !db.IsLambdaRuntime() {
		return a.DB.Close()
	}
	return nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.PoolFor(db.RoleForRuntime()))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}

	return migrateDev(ctx, cfg.Env, sqlDB)
}

// runMigrations is swapped in tests.
var runMigrations = db.RunMigrations

// migrateDev applies the embedded schema on dev and local startup. When it
// fails the connection is closed and memory repos take over. Other
// environments migrate through cmd/migrate.
func migrateDev(ctx context.Context, env string, sqlDB *sql.DB) (*sql.DB, error) {
	if sqlDB == nil || !isDevLike(env) {
		return sqlDB, nil
	}
	if err := runMigrations(ctx, sqlDB); err != nil {
		telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": "migrations failed", "error": err})
		_ = sqlDB.Close()
		return nil, nil
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "minio":
		return miniostore.New(ctx, miniostore.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			Region:    cfg.AWSRegion,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.QueueURL, cfg.AWSRegion)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(ctx context.Context, app *App) error {
	cfg := app.Config

	var (
		docRepo      documents.Repo
		jobRepo      jobs.Repo
		rankingStore rankings.Store
	)
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		jobRepo = &jobs.PGRepo{DB: app.DB}
		rankingStore = &rankings.PGStore{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		jobRepo = jobs.NewMemoryRepo()
		rankingStore = rankings.NewMemoryStore()
	}

	sender, err := buildExtraction(cfg)
	if err != nil {
		return err
	}
	rankClient, err := buildRanking(ctx, cfg)
	if err != nil {
		return err
	}
	mailer, err := buildMailer(cfg)
	if err != nil {
		return err
	}

	previews := preview.NewRegistry(cfg.PreviewTTL)
	docSvc := &documents.Service{Store: app.Store, Repo: docRepo, URLTTL: cfg.SignedURLTTL}
	intakeSvc := &intake.Service{
		Workspace: intake.NewWorkspace(previews),
		Batch:     &intake.Batch{Processor: &intake.Processor{Client: sender}, MaxInFlight: cfg.IntakeMaxInFlight},
		Committer: &intake.Committer{Store: app.Store, Records: docRepo, MaxInFlight: cfg.IntakeMaxInFlight},
	}

	rankSvc := &rankings.Service{Jobs: jobRepo, Store: rankingStore}
	if rankClient != nil {
		rankSvc.Client = rankClient
	}
	dispatcher := &rankings.Dispatcher{Service: rankSvc, Queue: app.Queue}
	jobSvc := jobs.NewService(jobRepo, dispatcher)

	var interviewMailer interviews.Mailer
	if mailer != nil {
		interviewMailer = mailer
	}
	interviewSvc := interviews.NewService(jobRepo, docSvc, interviewMailer, cfg.MailFrom)

	app.Previews = previews
	app.DocumentsRepo = docRepo
	app.JobsRepo = jobRepo
	app.RankingStore = rankingStore
	app.DocumentsService = docSvc
	app.IntakeService = intakeSvc
	app.JobsService = jobSvc
	app.RankingService = rankSvc
	app.Dispatcher = dispatcher
	app.InterviewService = interviewSvc
	app.HealthService = health.NewService(app.DB, cfg.ObjectStoreType)
	app.IntakeHandler = intake.NewHandler(intakeSvc)
	app.PreviewHandler = preview.NewHandler(previews)
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.JobsHandler = jobs.NewHandler(jobSvc)
	app.RankingsHandler = rankings.NewHandler(rankSvc, dispatcher)
	app.InterviewsHandler = interviews.NewHandler(interviewSvc)

	if app.IntakeHandler == nil || app.JobsHandler == nil || app.RankingsHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}

func buildExtraction(cfg config.Config) (intake.Sender, error) {
	if strings.TrimSpace(cfg.ExtractionURL) == "" {
		telemetry.Warn("bootstrap.extraction.unconfigured", map[string]any{"env": cfg.Env})
		return extractionPlaceholder{}, nil
	}
	return extraction.NewClient(extraction.Options{
		URL:          cfg.ExtractionURL,
		Timeout:      cfg.ExtractionTimeout,
		ClientID:     cfg.ExtractionClientID,
		ClientSecret: cfg.ExtractionClientSecret,
		TokenURL:     cfg.ExtractionTokenURL,
	})
}

func buildRanking(ctx context.Context, cfg config.Config) (*rankings.Client, error) {
	if strings.TrimSpace(cfg.RankingURL) == "" {
		telemetry.Warn("bootstrap.ranking.unconfigured", map[string]any{"env": cfg.Env})
		return nil, nil
	}
	return rankings.NewClient(ctx, cfg.RankingURL, cfg.RankingRegion, 0)
}

func buildMailer(cfg config.Config) (*interviews.HTTPMailer, error) {
	if strings.TrimSpace(cfg.MailAPIURL) == "" {
		return nil, nil
	}
	return interviews.NewHTTPMailer(cfg.MailAPIURL, cfg.MailAPIKey, nil)
}

type extractionPlaceholder struct{}

func (extractionPlaceholder) Send(ctx context.Context, body io.Reader, contentType string) (extraction.Result, error) {
	_ = ctx
	_ = body
	_ = contentType
	return extraction.Result{}, errors.New("extraction endpoint not configured")
}
