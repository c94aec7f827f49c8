package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/campushub/server/internal/module/auth"
	"github.com/campushub/server/internal/module/chat"
	"github.com/campushub/server/internal/module/collaboration"
	"github.com/campushub/server/internal/module/funding"
	"github.com/campushub/server/internal/module/moderation"
	"github.com/campushub/server/internal/module/notification"
	"github.com/campushub/server/internal/module/project"
	"github.com/campushub/server/internal/module/user"
	"github.com/campushub/server/internal/realtime"
	"github.com/campushub/server/internal/shared/cache"
	"github.com/campushub/server/internal/shared/config"
	"github.com/campushub/server/internal/shared/database"
	"github.com/campushub/server/internal/shared/entity"
	"github.com/campushub/server/internal/shared/logger"
	"github.com/campushub/server/internal/utils/metrics"
	"github.com/campushub/server/internal/utils/middleware"
)

// App owns every long-lived resource and the assembled router.
type App struct {
	cfg    *config.Config
	log    *logger.Logger
	zlog   *zap.Logger
	db     *gorm.DB
	redis  redis.UniversalClient
	server *http.Server
}

// New builds the application: connections, migrations, services, routes.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	zlog, err := logger.NewZap(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	m := metrics.New("campushub")
	verifier := auth.NewVerifier(&cfg.Auth)

	// Repositories.
	userRepo := user.NewRepository(db)
	projectRepo := project.NewRepository(db)
	collabRepo := collaboration.NewRepository(db)
	fundingRepo := funding.NewRepository(db)
	notifStore := notification.NewStore(db)
	chatRepo := chat.NewRepository(db)
	moderationRepo := moderation.NewRepository(db)

	// Services. The hub doubles as the dispatcher's publisher, so badge
	// frames ride the same topics as chat.
	hub := realtime.NewHub(m, zlog)
	projectService := project.NewService(projectRepo, zlog)

	dispatcher := notification.NewDispatcher(
		notifStore,
		userRepo,
		&notificationDirectory{projects: projectService, collaborations: collabRepo},
		hub,
		m,
		zlog,
	)
	notifService := notification.NewService(notifStore, redisClient, m, zlog)
	dispatcher.OnDispatch(notifService.InvalidateUnread)

	moderationService := moderation.NewService(&cfg.Moderation, moderationRepo, dispatcher, m, zlog)
	moderationService.RegisterHider(entity.KindMessage, chatRepo)

	chatService := chat.NewService(chatRepo, moderationService, dispatcher, zlog)
	collabService := collaboration.NewService(collabRepo, &collabProjects{projects: projectService}, dispatcher, zlog)
	fundingService := funding.NewService(fundingRepo, &fundingProjects{projects: projectService}, dispatcher, zlog)

	// Router.
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.CORS(middleware.DefaultCORSConfig()),
		middleware.Metrics(m),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	realtime.NewHandler(hub, verifier, chatService, &cfg.Realtime, m, zlog).RegisterRoutes(router)

	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(verifier))
	project.NewHandler(projectService, zlog).RegisterRoutes(api)
	collaboration.NewHandler(collabService, zlog).RegisterRoutes(api)
	funding.NewHandler(fundingService, zlog).RegisterRoutes(api)
	notification.NewHandler(notifService, zlog).RegisterRoutes(api)
	chat.NewHandler(chatService, zlog).RegisterRoutes(api)

	return &App{
		cfg:   cfg,
		log:   log,
		zlog:  zlog,
		db:    db,
		redis: redisClient,
		server: &http.Server{
			Addr:         cfg.Server.Address,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

// Run serves until the listener fails or Shutdown is called.
func (a *App) Run() error {
	a.zlog.Info("server starting", zap.String("address", a.cfg.Server.Address))
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes connections.
func (a *App) Shutdown(ctx context.Context) error {
	a.zlog.Info("server shutting down")

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := cache.Close(a.redis); err != nil {
		errs = append(errs, fmt.Errorf("redis close: %w", err))
	}
	if err := database.Close(a.db); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}
	_ = a.zlog.Sync()
	return errors.Join(errs...)
}

// migrate keeps the schema in step with the models.
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&project.Project{},
		&project.Stats{},
		&collaboration.CollaborationRequest{},
		&collaboration.Collaboration{},
		&funding.FundingRequest{},
		&funding.Fund{},
		&notification.Notification{},
		&chat.Message{},
		&moderation.Report{},
	)
}

// collabProjects adapts the project service to the collaboration module's
// lookup, translating the not-found sentinel across the module boundary.
type collabProjects struct {
	projects *project.Service
}

func (a *collabProjects) ProjectSummary(ctx context.Context, projectID uuid.UUID) (uuid.UUID, string, error) {
	ownerID, title, err := a.projects.ProjectSummary(ctx, projectID)
	if errors.Is(err, project.ErrProjectNotFound) {
		return uuid.Nil, "", collaboration.ErrProjectNotFound
	}
	return ownerID, title, err
}

// fundingProjects is the same adaptation for the funding module.
type fundingProjects struct {
	projects *project.Service
}

func (a *fundingProjects) ProjectSummary(ctx context.Context, projectID uuid.UUID) (uuid.UUID, string, error) {
	ownerID, title, err := a.projects.ProjectSummary(ctx, projectID)
	if errors.Is(err, project.ErrProjectNotFound) {
		return uuid.Nil, "", funding.ErrProjectNotFound
	}
	return ownerID, title, err
}

// notificationDirectory resolves fan-out recipients for the dispatcher.
type notificationDirectory struct {
	projects       *project.Service
	collaborations collaboration.Repository
}

func (d *notificationDirectory) OwnerID(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	return d.projects.OwnerID(ctx, projectID)
}

func (d *notificationDirectory) CollaboratorIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	return d.collaborations.CollaboratorIDs(ctx, projectID)
}
