package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dochub/internal/handlers"
	"dochub/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DocumentService    service.DocumentService
	DB                 handlers.Pinger
	JWTSecret          []byte
	CORSAllowedOrigins []string
	MaxUploadBytes     int64
	AskTimeout         time.Duration
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(Metrics)
	r.Use(CORS(deps.CORSAllowedOrigins))

	askHandler := handlers.NewAskHandler(deps.DocumentService, deps.AskTimeout)
	docHandler := handlers.NewDocumentHandler(deps.DocumentService, deps.MaxUploadBytes)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/docs", func(r chi.Router) {
			r.Use(RequireAuth(deps.JWTSecret))

			r.Post("/upload", docHandler.Upload)
			r.Method(http.MethodPost, "/ask", askHandler)
			r.Get("/list", docHandler.List)
			r.Get("/history", docHandler.History)
			r.Delete("/{id}", docHandler.Delete)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
