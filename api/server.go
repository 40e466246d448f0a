// Package api provides the HTTP REST API server for Nivesh.
//
// It exposes the exchange symbol listing and the single-symbol analysis
// endpoint.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/niveshlab/nivesh/internal/config"
	"github.com/niveshlab/nivesh/internal/research"
)

// StockDirectory serves the cached exchange symbol lists.
type StockDirectory interface {
	Get(ctx context.Context) (nse, bse []string)
}

// AnalyzeService runs the analysis pipeline for one symbol.
type AnalyzeService interface {
	Analyze(ctx context.Context, symbol string) (*research.Result, error)
}

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	cfg       *config.Config
	directory StockDirectory
	analyzer  AnalyzeService
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, dir StockDirectory, analyzer AnalyzeService) *Server {
	s := &Server{
		cfg:       cfg,
		directory: dir,
		analyzer:  analyzer,
	}
	s.router = s.buildRouter()
	return s
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
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/stocks", s.handleStocks)
	r.Post("/api/analyze", s.handleAnalyze)

	return r
}

// --- Wire formats ---

type stocksResponse struct {
	NSE    []string `json:"NSE"`
	BSE    []string `json:"BSE"`
	Status string   `json:"status"`
}

type stocksErrorResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Stocks  fallbackListing `json:"stocks"`
}

type fallbackListing struct {
	NSE []string `json:"NSE"`
	BSE []string `json:"BSE"`
}

type analyzeRequest struct {
	Symbol string `json:"symbol"`
}

type analyzeResponse struct {
	Fundamentals []research.DisplayMetric `json:"fundamentals"`
	Chart        string                   `json:"chart"`
	Analysis     string                   `json:"analysis"`
	Status       string                   `json:"status"`
	Partial      bool                     `json:"partial"`
}

type rateLimitedResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
	Symbol    string `json:"symbol"`
}

type internalErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStocks serves the cached symbol lists for both exchanges. An
// unexpected fault yields a 500 with a minimal static listing so the
// client always has symbols to offer.
func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("stocks handler panic: %v", rec)
			writeJSON(w, http.StatusInternalServerError, stocksErrorResponse{
				Status:  "error",
				Message: "failed to load stock lists",
				Stocks: fallbackListing{
					NSE: []string{"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS"},
					BSE: []string{"RELIANCE.BO", "TCS.BO", "HDFCBANK.BO"},
				},
			})
		}
	}()

	nse, bse := s.directory.Get(r.Context())
	writeJSON(w, http.StatusOK, stocksResponse{
		NSE:    nse,
		BSE:    bse,
		Status: "success",
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("analyze handler panic: %v", rec)
			writeJSON(w, http.StatusInternalServerError, internalErrorResponse{
				Error:     "internal error during analysis",
				Retryable: true,
			})
		}
	}()

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Symbol) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing symbol parameter"})
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), req.Symbol)
	if err != nil {
		if errors.Is(err, research.ErrFundamentalsUnavailable) {
			writeJSON(w, http.StatusTooManyRequests, rateLimitedResponse{
				Error:     "Rate limited by data providers. Please try again in a moment.",
				Retryable: true,
				Symbol:    req.Symbol,
			})
			return
		}
		log.Printf("analyze %s: %v", req.Symbol, err)
		writeJSON(w, http.StatusInternalServerError, internalErrorResponse{
			Error:     err.Error(),
			Retryable: true,
		})
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Fundamentals: result.Fundamentals,
		Chart:        result.Chart,
		Analysis:     result.Analysis,
		Status:       "success",
		Partial:      result.Partial,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}
