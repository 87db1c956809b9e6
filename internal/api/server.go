package api

import (
	"net/http"
	"time"

	analysisapi "github.com/datasleuth/analyst-backend/internal/api/analysis"
	"github.com/datasleuth/analyst-backend/internal/api/docs"
	"github.com/datasleuth/analyst-backend/internal/api/middleware"
	"github.com/datasleuth/analyst-backend/internal/api/ui"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(analysisHandler *analysisapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)   // Recover from panics
	r.Use(chimiddleware.RequestID)   // Add request ID
	r.Use(middleware.Logger(logger)) // Log requests
	// The agent call is fully blocking and can legitimately take minutes.
	r.Use(chimiddleware.Timeout(5 * time.Minute))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Single-page UI
	r.Get("/", ui.Handler())

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	analysisapi.RegisterRoutes(r, analysisHandler)

	return r
}
