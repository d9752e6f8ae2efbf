package portal

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/agentportal/agentportal/internal/agentconfig"
	"github.com/agentportal/agentportal/internal/config"
	"github.com/agentportal/agentportal/internal/foundry"
	"github.com/agentportal/agentportal/pkg/cerr"
	"github.com/agentportal/agentportal/pkg/clog"
)

// Gateway is the slice of the remote gateway the portal consumes. The portal
// is a consumer of the facade's public operations only.
type Gateway interface {
	ListFoundryAgents(ctx context.Context) ([]foundry.AgentSummary, error)
	ListFoundryTools(ctx context.Context) ([]foundry.ToolSummary, error)
	CreateFoundryAgent(ctx context.Context, name, instructions, model string, toolNames []string) (foundry.AgentSummary, error)
	ChatWithFoundryAgent(ctx context.Context, agentID, message string) (<-chan foundry.Fragment, error)
	ChatWithConfig(ctx context.Context, cfg *agentconfig.AgentConfig, message string) (<-chan foundry.Fragment, error)
}

type Server struct {
	server  *http.Server
	env     *config.Env
	configs *agentconfig.Service
	gateway Gateway
}

func NewServer(env *config.Env, configs *agentconfig.Service, gateway Gateway) *Server {
	return &Server{
		env:     env,
		configs: configs,
		gateway: gateway,
	}
}

// Handler builds the portal's routes. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", s.handleIndex)

	r.Route("/api", func(r chi.Router) {
		r.Use(clog.SlogChiMiddleware())

		r.Group(func(r chi.Router) {
			r.Use(cerr.NewJSONResponseChiMiddleware())
			r.Get("/agents", s.handleListAgents)
			r.Post("/agents", s.handleCreateAgent)
			r.Get("/agents/{id}", s.handleGetAgent)
			r.Get("/local-agents", s.handleListLocalAgents)
			r.Get("/tools", s.handleListTools)
			r.NotFound(func(w http.ResponseWriter, r *http.Request) {
				cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
			})
		})

		// Chat streams server-sent events and writes the response itself.
		r.Post("/agents/{id}/chat", s.handleChat)
	})

	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(r)
}

// ListenAndServe starts the HTTP server. The provided context is the base
// context for all requests, so cancelling it on shutdown also cancels
// in-flight chat streams.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting portal", "addr", addr)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
