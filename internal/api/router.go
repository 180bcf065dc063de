package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"picstream/internal/api/handlers"
	"picstream/internal/auth"
	"picstream/internal/services"
	"picstream/internal/storage"
	ws "picstream/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	tokens *auth.TokenService,
	userService services.UserServiceProvider,
	followService services.FollowServiceProvider,
	picService services.PicServiceProvider,
	feedService services.FeedServiceProvider,
	trendingService services.TrendingServiceProvider,
	uploads *storage.LocalStore,
	hub *ws.Hub,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, tokens)
	picHandler := handlers.NewPicHandler(picService, trendingService, uploads)
	followHandler := handlers.NewFollowHandler(followService)
	feedHandler := handlers.NewFeedHandler(feedService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	r.Route("/api", func(r chi.Router) {
		// Live pic stream
		r.Get("/ws", wsHandler.Serve)

		r.Post("/login", userHandler.Login)
		r.Post("/users", userHandler.Register)

		r.Group(func(r chi.Router) {
			r.Use(tokens.Middleware())
			r.Get("/me", userHandler.Me)
		})

		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/", userHandler.Get)
			r.Get("/pics", picHandler.ListByUser)
			r.Get("/follow", followHandler.Following)
			r.Get("/followers", followHandler.Followers)
			r.Get("/feed", feedHandler.Get)

			// Writes on an account require its owner's token.
			r.Group(func(r chi.Router) {
				r.Use(tokens.Middleware())
				r.Post("/pics", picHandler.Create)
				r.Post("/follow", followHandler.Follow)
				r.Delete("/follow/{follower}", followHandler.Unfollow)
			})
		})

		r.Route("/pics", func(r chi.Router) {
			r.Get("/search", picHandler.Search)
			r.Get("/hash/{hashtag}", picHandler.Hashtag)
			r.Get("/trending", picHandler.Trending)
		})
	})

	return r
}
