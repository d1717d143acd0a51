package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"wordvault-backend/internal/handlers"
	"wordvault-backend/internal/middleware"
	"wordvault-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
	wordHandler *handlers.WordHandler,
	setupHandler *handlers.SetupHandler,
	streakHandler *handlers.StreakHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Put("/password", authHandler.ChangePassword)
			})
		})

		// ──── Word Routes ────
		r.Route("/words", func(r chi.Router) {
			// Reads and the device-local learned flag are public
			r.Get("/", wordHandler.List)
			r.Get("/count", wordHandler.Count)
			r.Post("/{id}/learned", wordHandler.MarkLearned)
			r.Delete("/{id}/learned", wordHandler.UnmarkLearned)

			// Mutations are admin-only
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/", wordHandler.Add)
				r.Put("/{id}", wordHandler.Update)
				r.Delete("/{id}", wordHandler.Delete)
			})
		})

		// ──── Streak Routes ────
		r.Route("/streak", func(r chi.Router) {
			r.Get("/", streakHandler.Get)
			r.Post("/bump", streakHandler.Bump)
		})

		// ──── Setup Routes ────
		r.Route("/setup", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Put("/credentials", setupHandler.SetCredentials)
			r.Get("/test", setupHandler.TestConnection)
			r.Post("/provision", setupHandler.Provision)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
