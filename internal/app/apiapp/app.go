package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gigboard/backend/internal/config"
	s3infra "github.com/gigboard/backend/internal/infra/s3"
	"github.com/gigboard/backend/internal/jobs/cleanup"
	pgrepo "github.com/gigboard/backend/internal/repo/postgres"
	redrepo "github.com/gigboard/backend/internal/repo/redis"
	auditsvc "github.com/gigboard/backend/internal/services/audit"
	authsvc "github.com/gigboard/backend/internal/services/auth"
	listingssvc "github.com/gigboard/backend/internal/services/listings"
	mediasvc "github.com/gigboard/backend/internal/services/media"
	modsvc "github.com/gigboard/backend/internal/services/moderation"
	ratesvc "github.com/gigboard/backend/internal/services/rate"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	store      *pgrepo.Store
	auth       *authsvc.Service
	cleanupJob *cleanup.Job
	httpRouter http.Handler

	cleanupCtx  context.Context
	stopCleanup context.CancelFunc

	initMu      sync.Mutex
	initialized bool
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, cfg.HTTP.RequestTimeout)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}
	store := pgrepo.NewStore(pool)

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redrepo.Ping(ctx, redisClient); err != nil {
		log.Warn("redis ping failed, sessions unavailable until it recovers", zap.Error(err))
	}
	sessionRepo := redrepo.NewSessionRepo(redisClient)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, store, cfg.Auth.RefreshTTL)
	loginLimiter := ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient), cfg.Auth.LoginPerMinute, cfg.Auth.LoginPerHour)

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket, cfg.S3.Region)
	mediaService := mediasvc.NewService(store, mediaStorage, log.Named("media"))
	listingsService := listingssvc.NewService(store, mediaService)
	auditService := auditsvc.NewService(store)
	moderationService := modsvc.NewService(store, auditService, mediaStorage, log.Named("moderation"))
	moderationService.SetAccountSessions(authService)
	cleanupJob := cleanup.NewRejectedImageJob(store, mediaStorage, cfg.Cleanup.Interval, cfg.Cleanup.ImageRetention, log.Named("cleanup"))

	RegisterRoutes(r, Dependencies{
		AuthService:       authService,
		ListingsService:   listingsService,
		MediaService:      mediaService,
		ModerationService: moderationService,
		AuditService:      auditService,
		LoginLimiter:      loginLimiter,
		Profiles:          store,
		Logger:            log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		store:      store,
		auth:       authService,
		cleanupJob: cleanupJob,
		httpRouter: r,

		cleanupCtx:  cleanupCtx,
		stopCleanup: stopCleanup,
	}, nil
}

// Init runs the one-time startup work: schema migrations and the bootstrap
// admin account. Later calls are no-ops once a run has succeeded.
func (a *App) Init(ctx context.Context) error {
	a.initMu.Lock()
	defer a.initMu.Unlock()

	if a.initialized {
		return nil
	}
	if a.postgres == nil {
		a.logger.Warn("postgres unavailable, skipping migrations and admin bootstrap")
		return nil
	}

	if a.cfg.Postgres.AutoMigrate {
		applied, err := pgrepo.Migrate(ctx, a.postgres)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if len(applied) > 0 {
			a.logger.Info("migrations applied", zap.Strings("files", applied))
		}
	}

	if email := strings.TrimSpace(a.cfg.Admin.Email); email != "" {
		admin, err := a.auth.BootstrapAdmin(ctx, email, a.cfg.Admin.Password, a.cfg.Admin.FullName)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		a.logger.Info("bootstrap admin ready", zap.String("user_id", admin.ID), zap.String("email", admin.Email))
	}

	a.initialized = true
	return nil
}

func (a *App) Run() error {
	if a.postgres != nil && a.s3 != nil {
		go a.cleanupJob.Loop(a.cleanupCtx)
	}

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	a.stopCleanup()
	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
