// Package api exposes a read-only HTTP inspection surface over a message
// log: the schema, per-message latest snapshots, and Prometheus metrics.
package api

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ssargent/packlog/pkg/logfile"
)

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind string
	Port int
}

// Server holds the API server state. The log reader is not safe for
// concurrent scans, so mu serializes every load.
type Server struct {
	reader  *logfile.Reader
	config  ServerConfig
	metrics *Metrics
	log     zerolog.Logger
	mu      sync.Mutex
}

// NewServer creates a new API server over an open log reader
func NewServer(reader *logfile.Reader, config ServerConfig, metrics *Metrics, log zerolog.Logger) *Server {
	return &Server{
		reader:  reader,
		config:  config,
		metrics: metrics,
		log:     log,
	}
}

// StartServer starts the HTTP server with all routes configured
func StartServer(reader *logfile.Reader, config ServerConfig, log zerolog.Logger) error {
	metrics := NewMetrics()
	metrics.SetMessageTypes(len(reader.MessageTypes()))

	server := NewServer(reader, config, metrics, log)

	r := chi.NewRouter()

	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))
		r.Get("/schema", metrics.InstrumentHandler("GET", "/api/v1/schema", server.handleSchema))
		r.Get("/messages", metrics.InstrumentHandler("GET", "/api/v1/messages", server.handleMessages))
		r.Get("/messages/{name}", metrics.InstrumentHandler("GET", "/api/v1/messages/{name}", server.handleMessage))
	})

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	log.Info().Str("addr", addr).Msg("starting inspection server")

	return http.ListenAndServe(addr, r)
}
