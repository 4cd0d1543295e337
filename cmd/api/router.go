package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hszk-dev/vidvault/internal/api/handler"
	"github.com/hszk-dev/vidvault/internal/api/middleware"
	"github.com/hszk-dev/vidvault/internal/config"
)

type routerDeps struct {
	videos    *handler.VideoHandler
	likes     *handler.LikeHandler
	playlists *handler.PlaylistHandler
	channels  *handler.ChannelHandler
	health    *handler.HealthHandler
}

func setupRouter(logger *slog.Logger, cfg *config.Config, d routerDeps) *chi.Mux {
	auth := middleware.NewAuthenticator(cfg.Auth.AccessTokenSecret)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Optional)

		r.Get("/healthcheck", d.health.Check)

		r.Route("/videos", func(r chi.Router) {
			r.Get("/", d.videos.List)
			r.Get("/{videoId}", d.videos.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.Required)
				r.Post("/", d.videos.Publish)
				r.Patch("/{videoId}", d.videos.Update)
				r.Delete("/{videoId}", d.videos.Delete)
				r.Patch("/toggle/publish/{videoId}", d.videos.TogglePublish)
			})
		})

		r.Route("/likes", func(r chi.Router) {
			r.Use(auth.Required)
			r.Post("/toggle/v/{videoId}", d.likes.ToggleVideo)
			r.Post("/toggle/c/{commentId}", d.likes.ToggleComment)
			r.Post("/toggle/t/{tweetId}", d.likes.ToggleTweet)
			r.Get("/videos", d.likes.LikedVideos)
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/{playlistId}", d.playlists.Get)
			r.Get("/user/{userId}", d.playlists.ListByUser)

			r.Group(func(r chi.Router) {
				r.Use(auth.Required)
				r.Post("/", d.playlists.Create)
				r.Patch("/{playlistId}", d.playlists.Update)
				r.Delete("/{playlistId}", d.playlists.Delete)
				r.Patch("/add/{videoId}/{playlistId}", d.playlists.AddVideo)
				r.Patch("/remove/{videoId}/{playlistId}", d.playlists.RemoveVideo)
			})
		})

		r.Get("/discover/channels", d.channels.Discover)
		r.Get("/users/c/{username}", d.channels.Profile)
	})

	return r
}
