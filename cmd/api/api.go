package main

import (
	"net/http"
	"time"

	"github.com/farxc/cash-insights/internal/analytics"
	"github.com/farxc/cash-insights/internal/cache"
	"github.com/farxc/cash-insights/internal/ingest"
	"github.com/farxc/cash-insights/internal/logger"
	"github.com/farxc/cash-insights/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "0.1.0"

type application struct {
	config    config
	store     store.Storage
	engine    *analytics.Engine
	cache     cache.Cache
	parser    *ingest.Parser
	appLogger *logger.Logger
}

type config struct {
	addr           string
	requestTimeout time.Duration
	forecastPeriod string
	db             dbConfig
	cache          cacheConfig
	log            logConfig
	upload         uploadConfig
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
	migrate      bool
}

type cacheConfig struct {
	backend       string
	ttl           time.Duration
	redisAddr     string
	redisPassword string
	redisDB       int
	redisPrefix   string
}

type logConfig struct {
	level  string
	format string
}

type uploadConfig struct {
	maxBytes int64
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(app.config.requestTimeout))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", app.handleUploadDocuments)
			r.Get("/", app.handleListDocuments)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.handleGetDocument)
				r.Delete("/", app.handleDeleteDocument)
				r.Get("/metadata", app.handleGetDocumentMetadata)
				r.Put("/metadata", app.handleSaveDocumentMetadata)
			})
		})
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/stats", app.handleGetDashboardStats)
			r.Get("/forecast", app.handleGetCashForecast)
			r.Get("/flow", app.handleGetCashFlow)
			r.Get("/scenarios", app.handleGetScenarioAnalysis)
			r.Get("/shortfalls", app.handleGetCashShortfalls)
		})
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", app.handleGetInvoices)
			r.Get("/stats", app.handleGetInvoiceStats)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	const component = "Server"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	app.appLogger.Info(component, "Server started on %s", app.config.addr)
	return srv.ListenAndServe()
}
