package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"fitai-backend/internal/handlers"
	"fitai-backend/internal/middleware"
	"fitai-backend/internal/websocket"
)

func New(
	log *slog.Logger,
	chatHandler *handlers.ChatHandler,
	catalogHandler *handlers.CatalogHandler,
	progressHandler *handlers.ProgressHandler,
	wsHub *websocket.Hub,
	chatLimiter *middleware.RateLimiter,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(frontendURL))

	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {

		// ──── Chat Routes ────
		r.Route("/chat", func(r chi.Router) {
			r.Get("/", chatHandler.Status)
			r.With(chatLimiter.Middleware).Post("/", chatHandler.Chat)
			// The hub charges each frame to the same limiter.
			r.Get("/ws", wsHub.HandleWebSocket)
		})

		// ──── Catalog Routes ────
		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", catalogHandler.ListExercises)
			r.Get("/{id}", catalogHandler.GetExercise)
		})

		r.Route("/workouts", func(r chi.Router) {
			r.Get("/templates", catalogHandler.ListTemplates)
			r.Get("/templates/{id}", catalogHandler.GetTemplate)
			r.Get("/plans", catalogHandler.ListPlans)
			r.Get("/plans/{id}", catalogHandler.GetPlan)
		})

		// ──── Progress Routes ────
		r.Post("/progress/stats", progressHandler.Stats)
	})

	return r
}
