// Package server provides the HTTP REST API for the decision brief service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/regulapm/nexus/internal/config"
	"github.com/regulapm/nexus/internal/db"
	"github.com/regulapm/nexus/internal/llm"
	"github.com/regulapm/nexus/internal/pipeline"
	"github.com/regulapm/nexus/internal/regen"
	"github.com/regulapm/nexus/internal/server/middleware"
	"github.com/regulapm/nexus/internal/server/ratelimit"
	"github.com/regulapm/nexus/internal/stages"
	"github.com/regulapm/nexus/internal/store"
)

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	db           *db.DB // nil in memory mode
	briefs       store.Store
	orchestrator *pipeline.Orchestrator
	regen        *regen.Controller
	rateLimiter  *ratelimit.Limiter
	jwtService   *JWTService
	userService  *UserService
	authHandler  *AuthHandler
	validator    *validator.Validate
}

// Config holds server configuration
type Config struct {
	Port        string
	DatabaseURL string
	APIKey      string
	Models      []string
	Memory      bool // use the in-memory store instead of Postgres
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	ctx := context.Background()

	var (
		briefs   store.Store
		users    UserStore
		database *db.DB
	)
	if cfg.Memory {
		briefs = store.NewMemStore()
		users = NewMemUserStore()
	} else {
		var err error
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		briefs = database
		users = database
	}

	llmConfig := llm.DefaultConfig().WithModels(cfg.Models)
	client, err := llm.NewClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	adapter := llm.NewAdapter(client, llmConfig)

	s, err := newServer(briefs, users, adapter)
	if err != nil {
		return nil, err
	}
	s.db = database
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.router()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for full generation runs
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// newServer wires the service layer without transport concerns. Tests build
// servers through this path with fakes.
func newServer(briefs store.Store, users UserStore, caller stages.Caller) (*Server, error) {
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	userService := NewUserService(users, passwordConfig)
	jwtService := NewJWTService(jwtConfig)

	// One registry serializes full generations and per-unit regenerations.
	orchestrator := pipeline.NewOrchestrator(briefs, caller, pipeline.NewLockRegistry())

	return &Server{
		briefs:       briefs,
		orchestrator: orchestrator,
		regen:        regen.NewController(briefs, caller, orchestrator.Locks()),
		jwtService:   jwtService,
		userService:  userService,
		authHandler:  NewAuthHandler(userService, jwtService),
		validator:    validator.New(),
	}, nil
}

// router builds the route table. Everything under /briefs and /seed requires
// a bearer token.
func (s *Server) router() *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/signup", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("GET /auth/me", protected(s.authHandler.Me))

	// Brief CRUD
	mux.Handle("GET /briefs", protected(s.handleListBriefs))
	mux.Handle("POST /briefs", protected(s.handleCreateBrief))
	mux.Handle("GET /briefs/{id}", protected(s.handleGetBrief))
	mux.Handle("PUT /briefs/{id}", protected(s.handleUpdateBrief))
	mux.Handle("DELETE /briefs/{id}", protected(s.handleDeleteBrief))

	// Pipeline
	mux.Handle("POST /briefs/{id}/generate", protected(s.handleGenerate))
	mux.Handle("POST /briefs/{id}/regenerate", protected(s.handleRegenerate))
	mux.Handle("POST /briefs/{id}/summary/refresh", protected(s.handleSummaryRefresh))
	mux.Handle("POST /briefs/{id}/reset", protected(s.handleReset))

	// Review surface
	mux.Handle("GET /briefs/{id}/readiness", protected(s.handleReadiness))
	mux.Handle("POST /briefs/{id}/checklist/toggle", protected(s.handleChecklistToggle))
	mux.Handle("POST /briefs/{id}/sections/{key}/status", protected(s.handleSetSectionStatus))
	mux.Handle("POST /briefs/{id}/assumptions", protected(s.handleCreateAssumption))
	mux.Handle("PUT /briefs/{id}/assumptions/{aid}", protected(s.handleUpdateAssumption))
	mux.Handle("DELETE /briefs/{id}/assumptions/{aid}", protected(s.handleDeleteAssumption))

	mux.Handle("POST /seed", protected(s.handleSeed))

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
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
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	if s.db != nil {
		s.db.Close()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		if !allowed {
			s.setRateLimitHeaders(w, info)
			s.rateLimitResponse(w, info)
			return
		}

		s.setRateLimitHeaders(w, info)
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

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
// In the future, this could use X-Forwarded-For header (only from trusted proxies).
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
