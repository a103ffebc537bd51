package apiapp

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zenlit/backend/internal/config"
	authsvc "github.com/zenlit/backend/internal/services/auth"
	locsvc "github.com/zenlit/backend/internal/services/location"
	mediasvc "github.com/zenlit/backend/internal/services/media"
	msgsvc "github.com/zenlit/backend/internal/services/messages"
	postsvc "github.com/zenlit/backend/internal/services/posts"
	profilesvc "github.com/zenlit/backend/internal/services/profiles"
	radarsvc "github.com/zenlit/backend/internal/services/radar"
	"github.com/zenlit/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService    *authsvc.Service
	LocationHub    *locsvc.Hub
	RadarService   *radarsvc.Service
	ProfileService *profilesvc.Service
	PostService    *postsvc.Service
	MessageService *msgsvc.Service
	MediaService   *mediasvc.Service
	Postgres       *pgxpool.Pool
	Redis          *goredis.Client
	Logger         *zap.Logger
	Config         config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	locationHandler := handlers.NewLocationHandler(deps.LocationHub)
	radarHandler := handlers.NewRadarHandler(deps.RadarService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	postsHandler := handlers.NewPostsHandler(deps.PostService)
	messagesHandler := handlers.NewMessagesHandler(deps.MessageService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	healthHandler := handlers.NewHealthHandler(pgPinger(deps.Postgres), redisPinger(deps.Redis))

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW)

		r.Route("/location", func(r chi.Router) {
			r.Post("/report", locationHandler.Report)
			r.Post("/on", locationHandler.TurnOn)
			r.Post("/off", locationHandler.TurnOff)
			r.Post("/refresh", locationHandler.Refresh)
			r.Get("/state", locationHandler.State)
		})

		r.Route("/radar", func(r chi.Router) {
			r.Get("/bucket", radarHandler.Bucket)
			r.Get("/nearby", radarHandler.Nearby)
		})

		r.Get("/me", profileHandler.Me)
		r.Patch("/me", profileHandler.Update)
		r.Get("/profiles/{userID}", profileHandler.Get)

		r.Post("/posts", postsHandler.Create)
		r.Get("/feed", postsHandler.Feed)

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", messagesHandler.Send)
			r.Get("/{peerID}", messagesHandler.Conversation)
			r.Post("/{peerID}/read", messagesHandler.MarkRead)
		})

		r.Post("/media/post", mediaHandler.PostMediaUpload)
		r.Post("/media/avatar", mediaHandler.AvatarUpload)
	})
}

func pgPinger(pool *pgxpool.Pool) handlers.Pinger {
	if pool == nil {
		return nil
	}
	return pingFunc(func(ctx context.Context) error { return pool.Ping(ctx) })
}

func redisPinger(client *goredis.Client) handlers.Pinger {
	if client == nil {
		return nil
	}
	return pingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }
