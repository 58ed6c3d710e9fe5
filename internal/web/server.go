package web

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"mspro-labs/brew-notes/internal/embedder"
	"mspro-labs/brew-notes/internal/matcher"
	"mspro-labs/brew-notes/internal/models"
)

var logger = log.New(os.Stdout, "WEB: ", log.LstdFlags)

// LabelReader reads label fields from text copied off a bag.
type LabelReader interface {
	ExtractLabelText(ctx context.Context, text string) (models.LabelFields, error)
}

// Server serves the journal pages and the JSON API.
type Server struct {
	db     *sql.DB
	m      *matcher.Matcher
	ai     embedder.Embedder
	labels LabelReader
	pages  *Pages
	router *mux.Router
}

// NewServer wires the routes. client and labels may be nil, in which case
// semantic search and label extraction answer 503.
func NewServer(database *sql.DB, m *matcher.Matcher, client embedder.Embedder, labels LabelReader) (*Server, error) {
	if m == nil {
		return nil, errors.New("web: nil matcher")
	}
	pages, err := ParsePages()
	if err != nil {
		return nil, err
	}

	s := &Server{db: database, m: m, ai: client, labels: labels, pages: pages}
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	api := s.router.PathPrefix("/api").Subrouter()

	// Matching
	api.HandleFunc("/match/{category}", s.handleMatch).Methods("GET")
	api.HandleFunc("/prefill", s.handlePrefill).Methods("POST")
	api.HandleFunc("/extract", s.handleExtract).Methods("POST")

	// Journal
	api.HandleFunc("/notes", s.handleListNotes).Methods("GET")
	api.HandleFunc("/notes", s.handleCreateNote).Methods("POST")
	api.HandleFunc("/notes/{id:[0-9]+}", s.handleGetNote).Methods("GET")
	api.HandleFunc("/notes/{id:[0-9]+}", s.handleDeleteNote).Methods("DELETE")

	// Suggestions
	api.HandleFunc("/catalog/regions", s.handleRegions).Methods("GET")
	api.HandleFunc("/catalog/farms", s.handleFarms).Methods("GET")

	// Pages
	s.router.HandleFunc("/", s.handleHome).Methods("GET")
	s.router.HandleFunc("/search", s.handleSearch).Methods("GET")

	s.router.Use(requestLogging)
}

// Start serves on port until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start(port int) error {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("🌐 Web UI started at http://localhost%s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	logger.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Println("Server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.RequestURI(), rec.status, time.Since(start).Round(time.Millisecond))
	})
}
