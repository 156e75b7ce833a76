package server

import (
	"net/http"

	"github.com/cloo-solutions/askai/internal/api/handlers"
	"github.com/cloo-solutions/askai/internal/api/middleware"
	"github.com/cloo-solutions/askai/internal/web"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const defaultMaxBodyBytes int64 = 1 << 20

type RouterConfig struct {
	AskHandler    *handlers.AskHandler
	HealthHandler *handlers.HealthHandler
	Logger        *zap.Logger
	// CORSAllowedOrigins defaults to "*".
	CORSAllowedOrigins []string
	MaxBodyBytes       int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(logger))
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler)
	r.Use(middleware.MaxBodyBytes(maxBody))

	r.Get("/", web.Index)
	r.Get("/health", cfg.HealthHandler.Health)
	r.Post("/ask", cfg.AskHandler.Ask)

	return r
}
