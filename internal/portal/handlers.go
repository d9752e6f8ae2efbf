package portal

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agentportal/agentportal/internal/agentconfig"
	"github.com/agentportal/agentportal/internal/foundry"
	"github.com/agentportal/agentportal/pkg/cerr"
)

type listAgentsResponse struct {
	Agents []foundry.AgentSummary `json:"agents"`
	Count  int                    `json:"count"`
}

type listToolsResponse struct {
	Tools []foundry.ToolSummary `json:"tools"`
	Count int                   `json:"count"`
}

type localAgentResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Purpose      string    `json:"purpose"`
	Personality  string    `json:"personality"`
	Capabilities []string  `json:"capabilities,omitempty"`
	Rules        []string  `json:"rules,omitempty"`
	Instructions string    `json:"instructions"`
	CreatedAt    time.Time `json:"created_at"`
}

type listLocalAgentsResponse struct {
	Agents []localAgentResponse `json:"agents"`
	Count  int                  `json:"count"`
}

type createAgentRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Purpose      string   `json:"purpose"`
	Personality  string   `json:"personality"`
	Capabilities []string `json:"capabilities"`
	Rules        []string `json:"rules"`
	Model        string   `json:"model"`
	ToolNames    []string `json:"tool_names"`
}

type createAgentResponse struct {
	FoundryAgent foundry.AgentSummary `json:"foundry_agent"`
	LocalConfig  localAgentResponse   `json:"local_config"`
}

func toLocalAgentResponse(c *agentconfig.AgentConfig) localAgentResponse {
	return localAgentResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		Purpose:      c.Purpose,
		Personality:  c.Personality,
		Capabilities: c.Capabilities,
		Rules:        c.Rules,
		Instructions: c.Instructions,
		CreatedAt:    c.CreatedAt,
	}
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agents, err := s.gateway.ListFoundryAgents(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if agents == nil {
		agents = []foundry.AgentSummary{}
	}
	cerr.SetJSONResponse(ctx, listAgentsResponse{Agents: agents, Count: len(agents)})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tools, err := s.gateway.ListFoundryTools(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if tools == nil {
		tools = []foundry.ToolSummary{}
	}
	cerr.SetJSONResponse(ctx, listToolsResponse{Tools: tools, Count: len(tools)})
}

func (s *Server) handleListLocalAgents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	configs, err := s.configs.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	agents := make([]localAgentResponse, 0, len(configs))
	for _, c := range configs {
		agents = append(agents, toLocalAgentResponse(c))
	}
	cerr.SetJSONResponse(ctx, listLocalAgentsResponse{Agents: agents, Count: len(agents)})
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := s.configs.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, toLocalAgentResponse(c))
}

// handleCreateAgent registers a configuration locally, then provisions the
// matching remote agent. A remote failure leaves the local config in place so
// the caller can retry or chat with the config directly.
func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}

	cfg, err := s.configs.Create(ctx, agentconfig.CreateRequest{
		Name:         req.Name,
		Description:  req.Description,
		Purpose:      req.Purpose,
		Personality:  req.Personality,
		Capabilities: req.Capabilities,
		Rules:        req.Rules,
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	summary, err := s.gateway.CreateFoundryAgent(ctx, cfg.Name, cfg.Instructions, req.Model, req.ToolNames)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, createAgentResponse{
		FoundryAgent: summary,
		LocalConfig:  toLocalAgentResponse(cfg),
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatDelta struct {
	Text string `json:"text"`
}

type chatError struct {
	Error string `json:"error"`
}

// handleChat streams the reply as server-sent events. Fragments become data
// events, a terminal failure becomes an error event, and a done event marks
// clean completion. Delivered fragments are never retracted.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		cerr.WriteJSONError(ctx, w, cerr.NewError(cerr.InvalidArgument, "message is required", err))
		return
	}

	id := chi.URLParam(r, "id")
	fragments, err := s.openStream(r, id, req.Message)
	if err != nil {
		cerr.WriteJSONError(ctx, w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		cerr.WriteJSONError(ctx, w, cerr.NewError(cerr.Internal, "streaming unsupported", nil))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for f := range fragments {
		if f.Err != nil {
			writeSSE(w, flusher, "error", chatError{Error: f.Err.Error()})
			return
		}
		writeSSE(w, flusher, "", chatDelta{Text: f.Text})
	}
	writeSSE(w, flusher, "done", nil)
}

// openStream resolves the chat target: a locally stored configuration wins,
// any other identifier is passed through to the remote platform as an agent
// name or id.
func (s *Server) openStream(r *http.Request, id, message string) (<-chan foundry.Fragment, error) {
	ctx := r.Context()

	cfg, err := s.configs.Get(ctx, id)
	switch {
	case err == nil:
		return s.gateway.ChatWithConfig(ctx, cfg, message)
	case cerr.IsCode(err, cerr.NotFound):
		return s.gateway.ChatWithFoundryAgent(ctx, id, message)
	default:
		return nil, err
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, payload any) {
	if event != "" {
		_, _ = w.Write([]byte("event: " + event + "\n"))
	}
	data := []byte("data: ")
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return
		}
		data = append(data, encoded...)
	}
	data = append(data, '\n', '\n')
	_, _ = w.Write(data)
	flusher.Flush()
}
