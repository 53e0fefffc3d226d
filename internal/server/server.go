// Package server provides the HTTP REST API for the idea generation
// pipeline.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ymori/ideascout/internal/collect"
	"github.com/ymori/ideascout/internal/config"
	"github.com/ymori/ideascout/internal/db"
	"github.com/ymori/ideascout/internal/ideation"
	"github.com/ymori/ideascout/internal/llm"
	"github.com/ymori/ideascout/internal/progress"
	"github.com/ymori/ideascout/internal/search"
)

// Store is the persistence surface the API depends on. *db.DB satisfies
// it.
type Store interface {
	CreateSession(ctx context.Context, userInput string) (*db.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*db.Session, error)
	UpdateSessionStatus(ctx context.Context, id uuid.UUID, status string) error
	InsertProgress(ctx context.Context, rec progress.Record) error
	ListProgress(ctx context.Context, sessionID uuid.UUID) ([]db.ProgressRow, error)
	InsertResearchData(ctx context.Context, sessionID uuid.UUID, inputs []db.ResearchDataInput) ([]db.ResearchData, error)
	ListResearchData(ctx context.Context, sessionID uuid.UUID) ([]db.ResearchData, error)
	LatestCategoryTrends(ctx context.Context) ([]db.ResearchData, error)
	InsertIdeas(ctx context.Context, sessionID uuid.UUID, inputs []db.IdeaInput) ([]db.IdeaRow, error)
	ListIdeas(ctx context.Context, sessionID uuid.UUID) ([]db.IdeaRow, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	store         Store
	collectAgent  *collect.Agent
	ideationAgent *ideation.Agent
	validator     *validator.Validate
}

// New creates a new server instance with injected collaborators.
func New(cfg config.Config, store Store, llmClient llm.Client, searchClient search.Client) *Server {
	reporter := progress.NewReporter(store)

	s := &Server{
		store:     store,
		validator: validator.New(),
		collectAgent: collect.New(reporter, llmClient, searchClient, store,
			collect.WithMaxTrendAge(cfg.MaxTrendAge()),
			collect.WithStageTimeout(cfg.StageTimeout()),
			collect.WithMinReliability(cfg.MinReliability)),
		ideationAgent: ideation.New(reporter, llmClient, store,
			ideation.WithIdeaCount(cfg.IdeaCount),
			ideation.WithStageTimeout(cfg.StageTimeout())),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /sessions/{id}/collect", s.handleCollect)
	mux.HandleFunc("POST /sessions/{id}/ideate", s.handleIdeate)
	mux.HandleFunc("GET /sessions/{id}/progress", s.handleProgress)
	mux.HandleFunc("GET /sessions/{id}/ideas", s.handleIdeas)

	listenAddr := cfg.ListenAddr
	if listenAddr == "" {
		listenAddr = config.DefaultListenAddr
	}

	s.httpServer = &http.Server{
		Addr:         listenAddr,
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute, // stages can run for minutes
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	log.Println("Server stopped")
	return nil
}

// Handler exposes the configured routes. Used in tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
