// Package api provides the HTTP REST API server for the owner portal.
//
// It exposes the map and well list, the economics endpoints, bulk
// production lookup, decline-curve forecasting, and document upload
// management.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/segminerals/ownerportal/internal/auth"
	"github.com/segminerals/ownerportal/internal/config"
	"github.com/segminerals/ownerportal/internal/docs"
	"github.com/segminerals/ownerportal/internal/econ"
	"github.com/segminerals/ownerportal/internal/ownership"
	"github.com/segminerals/ownerportal/internal/production"
	"github.com/segminerals/ownerportal/internal/warehouse"
	"github.com/segminerals/ownerportal/pkg/models"
)

// Version is reported by the health endpoint; the CLI overwrites it
// with the build-time version.
var Version = "dev"

// PriceSource supplies raw price rows for the named decks.
type PriceSource interface {
	PriceRows(ctx context.Context, deckNames ...string) ([]models.PricePoint, error)
}

// MapSource supplies the completed-well coordinates for the map page.
type MapSource interface {
	MapPoints(ctx context.Context) ([]models.Well, error)
}

// Deps are the data-plane collaborators the server routes requests to.
// NewServer wires them to the warehouse and AWS; tests substitute fakes.
type Deps struct {
	Ownership  ownership.Source
	Production econ.ProductionSource
	Prices     PriceSource
	Map        MapSource
	Docs       *docs.Service
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config

	resolver *ownership.Resolver
	cache    *ownership.Cache
	engine   *econ.Engine
	bulk     *production.Service
	prices   PriceSource
	mapSrc   MapSource
	docs     *docs.Service

	// whErr is the startup warehouse configuration error, if any. The
	// server still serves /health and auth failures; data endpoints
	// answer 503 until the configuration is fixed.
	whErr error
}

// NewServer creates a configured API server with all routes wired to the
// warehouse and object storage.
func NewServer(cfg *config.Config) (*Server, error) {
	var deps Deps
	var whErr error

	client, err := warehouse.NewClient(cfg.Warehouse, cfg.AWS)
	if err != nil {
		var cfgErr *warehouse.ConfigError
		if !errors.As(err, &cfgErr) {
			return nil, err
		}
		// Start anyway; data endpoints return 503 with a stable code.
		log.Printf("warehouse not configured: %v", err)
		whErr = err
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, err
		}
		store := docs.NewS3Store(s3.NewFromConfig(awsCfg), cfg.AWS.DocumentBucket)

		deps = Deps{
			Ownership:  client,
			Production: client,
			Prices:     client,
			Map:        client,
			Docs: docs.NewService(client, store,
				time.Duration(cfg.AWS.UploadURLTTLSec)*time.Second,
				time.Duration(cfg.AWS.DownloadURLTTLSec)*time.Second),
		}
	}

	srv := NewServerWithDeps(cfg, deps)
	srv.whErr = whErr
	return srv, nil
}

// NewServerWithDeps creates a server over explicit collaborators.
func NewServerWithDeps(cfg *config.Config, deps Deps) *Server {
	srv := &Server{
		cfg:    cfg,
		prices: deps.Prices,
		mapSrc: deps.Map,
		docs:   deps.Docs,
	}
	if deps.Ownership != nil {
		srv.cache = ownership.NewCache(deps.Ownership)
		srv.resolver = ownership.NewResolver(srv.cache)
	}
	if deps.Production != nil {
		srv.engine = econ.NewEngine(deps.Production, econ.AssumptionsFromConfig(cfg.Econ))
		srv.bulk = production.NewService(deps.Production)
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Public data
		r.Get("/map", s.handleMap)
		r.Post("/production/bulk", s.handleBulkProduction)
		r.Post("/forecast/decline", s.handleDecline)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.cfg.Auth.JWTSecret))

			r.Get("/wells", s.handleWells)
			r.Get("/economics/summary", s.handleEconomicsSummary)
			r.Get("/economics/pv", s.handleEconomicsPV)
			r.Post("/ownership/refresh", s.handleOwnershipRefresh)

			r.Route("/files", func(r chi.Router) {
				r.Post("/start-upload", s.handleStartUpload)
				r.Post("/finalize", s.handleFinalizeUpload)
				r.Get("/", s.handleListDocuments)
				r.Patch("/{id}", s.handleUpdateDocument)
				r.Delete("/{id}", s.handleDeleteDocument)
				r.Post("/{id}/open", s.handleOpenDocument)
			})
		})
	})

	return r
}
