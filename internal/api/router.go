package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/liuclever/summonking/internal/api/handlers"
	"github.com/liuclever/summonking/internal/api/middleware"
	"github.com/liuclever/summonking/internal/config"
	"github.com/liuclever/summonking/internal/service"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	kingHandler := handlers.NewKingHandler(services.Season, services.Reward, services.Phase)
	bracketHandler := handlers.NewBracketHandler(services.Bracket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/king", func(r chi.Router) {
			// Ranking is public
			r.Get("/ranking", kingHandler.Ranking)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWTSecret))
				r.Post("/register", kingHandler.Register)
				r.Post("/signup", kingHandler.Signup)
				r.Get("/bracket", bracketHandler.State)
				r.Get("/rewards", kingHandler.Rewards)
			})
		})

		// Admin triggers; normally fired by the scheduler, exposed for
		// operational re-runs.
		r.Route("/admin/bracket", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Post("/seed", bracketHandler.Seed)
			r.Post("/advance", bracketHandler.Advance)
		})
	})

	return r
}
