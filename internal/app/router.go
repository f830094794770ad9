package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/raibo/raiboard/internal/apperrors"
	"github.com/raibo/raiboard/internal/audit"
	"github.com/raibo/raiboard/internal/board"
	"github.com/raibo/raiboard/internal/config"
	"github.com/raibo/raiboard/internal/identity"
	"github.com/redis/go-redis/v9"
)

// NewRouter creates and configures the Chi router with all middleware and routes
func NewRouter(svc *board.Service, pool *pgxpool.Pool, redisClient *redis.Client, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apperrors.RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	// Requests without a valid bearer token continue as anonymous; the
	// board service decides what anonymous users may see.
	r.Use(identity.Middleware(cfg.JWTSecret))

	auditor := audit.NewWriter(pool)
	reader := audit.NewReader(pool)

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(pool, redisClient))

	r.Route("/api/v1/boards", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(MutationRateLimit(cfg.RateLimitRPM))

		r.Post("/", board.HandleCreate(svc, auditor))
		r.Get("/", board.HandleList(svc))

		r.Route("/{board_id}", func(r chi.Router) {
			r.Get("/", board.HandleGet(svc))
			r.Put("/", board.HandleUpdate(svc, auditor))
			r.Delete("/", board.HandleDelete(svc, auditor))
			r.Put("/settings", board.HandleUpdateSettings(svc, auditor))

			r.Post("/elements/products", board.HandlePlaceProduct(svc, auditor))
			r.Post("/elements/texts", board.HandlePlaceText(svc, auditor))
			r.Patch("/elements/{element_id}", board.HandleUpdateElement(svc, auditor))
			r.Put("/elements/{element_id}/layer", board.HandleSetElementLayer(svc, auditor))
			r.Delete("/elements/{element_id}", board.HandleRemoveElement(svc, auditor))

			r.Get("/collaborators", board.HandleListCollaborators(svc))
			r.Put("/collaborators/{user_id}", board.HandleSetCollaboratorRole(svc, auditor))
			r.Delete("/collaborators/{user_id}", board.HandleRemoveCollaborator(svc, auditor))

			r.Post("/presence", board.HandleHeartbeat(svc))

			r.Post("/invites", board.HandleCreateInvite(svc, auditor))
			r.Get("/invites", board.HandleListInvites(svc))
			r.Delete("/invites/{invite_id}", board.HandleRevokeInvite(svc, auditor))

			r.Get("/events", board.HandleListEvents(svc, reader))
		})
	})

	r.Route("/api/v1/invites", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(identity.RequireAuth)
		r.Use(MutationRateLimit(cfg.RateLimitRPM))

		r.Post("/{invite_id}/respond", board.HandleRespondInvite(svc, auditor))
	})

	return r
}

// handleHealthz returns a simple liveness check
// Always returns 200 OK if the service is running
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteSuccess(w, r, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleReadyz reports readiness, including database and redis
// connectivity. Returns 503 when either backend is unreachable.
func handleReadyz(pool *pgxpool.Pool, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			apperrors.WriteServiceUnavailable(w, r, "Database connection failed")
			return
		}
		if err := redisClient.Ping(r.Context()).Err(); err != nil {
			apperrors.WriteServiceUnavailable(w, r, "Redis connection failed")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]string{
			"status": "ready",
			"db":     "ok",
			"redis":  "ok",
		})
	}
}
