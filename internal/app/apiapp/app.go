package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zenlit/backend/internal/config"
	s3infra "github.com/zenlit/backend/internal/infra/s3"
	pgrepo "github.com/zenlit/backend/internal/repo/postgres"
	redrepo "github.com/zenlit/backend/internal/repo/redis"
	authsvc "github.com/zenlit/backend/internal/services/auth"
	locsvc "github.com/zenlit/backend/internal/services/location"
	mediasvc "github.com/zenlit/backend/internal/services/media"
	msgsvc "github.com/zenlit/backend/internal/services/messages"
	postsvc "github.com/zenlit/backend/internal/services/posts"
	profilesvc "github.com/zenlit/backend/internal/services/profiles"
	radarsvc "github.com/zenlit/backend/internal/services/radar"
	ratesvc "github.com/zenlit/backend/internal/services/rate"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	intentRepo := redrepo.NewIntentRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)

	userRepo := pgrepo.NewUserRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	radarRepo := pgrepo.NewRadarRepo(pool)
	postRepo := pgrepo.NewPostRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	mediaService := mediasvc.NewService(mediaStorage)

	profileService := profilesvc.NewService(profileRepo)

	hub := locsvc.NewHub(profileRepo, intentRepo, log, cfg.Location.PollInterval)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, userRepo, profileService, cfg.Auth.RefreshTTL)
	authService.RegisterCleaner(locationReset{hub: hub, store: profileRepo, intents: intentRepo})

	radarService := radarsvc.NewService(radarRepo, log,
		cfg.Radar.DefaultRadiusKM,
		cfg.Radar.MaxRadiusKM,
		cfg.Radar.DefaultLimit,
	)

	postService := postsvc.NewService(postRepo, profileRepo, mediaService, cfg.Feed.PageSize)

	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Messages.RatePerMinute, cfg.Messages.RatePer10Seconds)
	messageService := msgsvc.NewService(messageRepo, rateLimiter, 0)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:    authService,
		LocationHub:    hub,
		RadarService:   radarService,
		ProfileService: profileService,
		PostService:    postService,
		MessageService: messageService,
		MediaService:   mediaService,
		Postgres:       pool,
		Redis:          redisClient,
		Logger:         log,
		Config:         cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

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

// locationReset is the logout hook: drop the in-memory manager, null the
// published coordinates, and forget the sharing intent.
type locationReset struct {
	hub     *locsvc.Hub
	store   locsvc.ProfileLocationStore
	intents locsvc.IntentStore
}

// Reset always nulls the published coordinates and clears the persisted
// intent, even when no in-memory manager exists (logout after a restart).
// The hub teardown only covers the live session.
func (lr locationReset) Reset(ctx context.Context, userID uuid.UUID) error {
	if lr.hub != nil {
		if err := lr.hub.Drop(ctx, userID); err != nil {
			return err
		}
	}

	if lr.store != nil {
		if err := lr.store.ClearLocation(ctx, userID); err != nil {
			return err
		}
	}
	if lr.intents != nil {
		return lr.intents.Clear(ctx, userID)
	}
	return nil
}
