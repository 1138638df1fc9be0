// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"nutrifacil/internal/flow"
	"nutrifacil/internal/models"
	"nutrifacil/internal/session"
	"nutrifacil/internal/views"
)

const defaultGenerationTimeout = 90 * time.Second

// Gateway is every AI operation the web flow and the MCP tools need.
type Gateway interface {
	flow.Generator
	flow.Chatter
	flow.Substituter
}

// CallLister reads the AI call log.
type CallLister interface {
	RecentCalls(ctx context.Context, limit int) ([]models.CallRecord, error)
	Summary(ctx context.Context) ([]models.CallSummary, error)
}

type Options struct {
	Address  string
	Gateway  Gateway
	Sessions *session.Store
	Cookies  *session.CookieCodec
	Renderer *views.Renderer
	// Calls is optional; without it /api/calls answers 404.
	Calls CallLister
	// GenerationTimeout bounds a background plan generation.
	GenerationTimeout time.Duration
	Logger            *slog.Logger
}

type Server struct {
	httpServer *http.Server
	router     chi.Router

	gateway  Gateway
	sessions *session.Store
	cookies  *session.CookieCodec
	renderer *views.Renderer
	calls    CallLister
	tools    map[string]toolHandler

	generationTimeout time.Duration

	// baseCtx parents every background generation; Stop cancels it.
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	logger *slog.Logger
}

func New(opts Options) (*Server, error) {
	if opts.Gateway == nil {
		return nil, errors.New("server: gateway is required")
	}
	if opts.Sessions == nil || opts.Cookies == nil {
		return nil, errors.New("server: session store and cookie codec are required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("server: renderer is required")
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = defaultGenerationTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		gateway:           opts.Gateway,
		sessions:          opts.Sessions,
		cookies:           opts.Cookies,
		renderer:          opts.Renderer,
		calls:             opts.Calls,
		generationTimeout: opts.GenerationTimeout,
		baseCtx:           baseCtx,
		cancel:            cancel,
		logger:            opts.Logger,
	}
	s.registerTools()
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:              opts.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/mcp", s.handleListTools)
	r.Post("/mcp", s.handleMCP)
	r.Get("/api/calls", s.handleCalls)

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(s.sessions, s.cookies))

		r.Get("/", s.handleCurrent)
		r.Post("/welcome/start", s.handleBegin)

		r.Get("/onboarding", s.handleFixed(flow.ScreenOnboarding))
		r.Post("/onboarding", s.handleAdvance)
		r.Post("/onboarding/back", s.handleRetreat)

		r.Get("/generating", s.handleFixed(flow.ScreenGenerating))
		r.Post("/generating/cancel", s.handleCancel)

		for _, screen := range flow.LateralScreens() {
			r.Get(pathFor(screen), s.handleLateral(screen))
		}

		r.Get("/diet/shopping", s.handleShopping)
		r.Post("/diet/substitute", s.handleSubstitute)
		r.Post("/diet/substitute/close", s.handleCloseSubstitution)
		r.Post("/chat", s.handleChat)
		r.Post("/profile/regenerate", s.handleRegenerate)
		r.Post("/profile/edit", s.handleEditProfile)

		r.Get("/api/session", s.handleSessionAPI)
	})

	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting NutriFácil server", "address", s.httpServer.Addr, "tools", len(s.tools))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the listener down, cancels running generations and waits for
// their goroutines.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	if s.httpServer != nil {
		shutdownErr = s.httpServer.Shutdown(ctx)
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for generations: %w", ctx.Err())
	}

	return shutdownErr
}

// startGeneration runs the submitted profile through the gateway in the
// background. The session applies the outcome itself.
func (s *Server) startGeneration(current *flow.Session) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(s.baseCtx, s.generationTimeout)
		defer cancel()

		if err := current.RunGeneration(ctx, s.gateway); err != nil {
			s.logger.Warn("generation ended without a plan", "session_id", current.ID(), "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
