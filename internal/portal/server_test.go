package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentportal/agentportal/internal/agentconfig"
	"github.com/agentportal/agentportal/internal/agentconfig/repositoryimpl"
	"github.com/agentportal/agentportal/internal/config"
	"github.com/agentportal/agentportal/internal/foundry"
	"github.com/agentportal/agentportal/pkg/cerr"
)

type fakeGateway struct {
	agents    []foundry.AgentSummary
	tools     []foundry.ToolSummary
	listErr   error
	created   foundry.AgentSummary
	createErr error

	fragments []foundry.Fragment
	chatErr   error

	createName         string
	createInstructions string
	createTools        []string
	chatAgentID        string
	chatConfigID       string
}

func (f *fakeGateway) ListFoundryAgents(context.Context) ([]foundry.AgentSummary, error) {
	return f.agents, f.listErr
}

func (f *fakeGateway) ListFoundryTools(context.Context) ([]foundry.ToolSummary, error) {
	return f.tools, f.listErr
}

func (f *fakeGateway) CreateFoundryAgent(_ context.Context, name, instructions, _ string, toolNames []string) (foundry.AgentSummary, error) {
	f.createName = name
	f.createInstructions = instructions
	f.createTools = toolNames
	return f.created, f.createErr
}

func (f *fakeGateway) stream() <-chan foundry.Fragment {
	ch := make(chan foundry.Fragment, len(f.fragments))
	for _, fr := range f.fragments {
		ch <- fr
	}
	close(ch)
	return ch
}

func (f *fakeGateway) ChatWithFoundryAgent(_ context.Context, agentID, _ string) (<-chan foundry.Fragment, error) {
	f.chatAgentID = agentID
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return f.stream(), nil
}

func (f *fakeGateway) ChatWithConfig(_ context.Context, cfg *agentconfig.AgentConfig, _ string) (<-chan foundry.Fragment, error) {
	f.chatConfigID = cfg.ID
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return f.stream(), nil
}

func newTestServer(gw *fakeGateway) (*Server, *agentconfig.Service) {
	svc := agentconfig.NewService(repositoryimpl.NewMemoryRepository())
	return NewServer(&config.Env{}, svc, gw), svc
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *strings.Reader
	if body == "" {
		reqBody = strings.NewReader("")
	} else {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(&fakeGateway{})
	rec := doJSON(t, s.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestIndexServesHTML(t *testing.T) {
	s, _ := newTestServer(&fakeGateway{})
	rec := doJSON(t, s.Handler(), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Agent Portal")
}

func TestListAgents(t *testing.T) {
	gw := &fakeGateway{agents: []foundry.AgentSummary{
		{ID: "agent-1", Name: "alpha", Model: "gpt-4o"},
		{ID: "agent-2", Name: "beta", HasTools: true, ToolTypes: []string{"mcp:search"}},
	}}
	s, _ := newTestServer(gw)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/agents", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listAgentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "alpha", resp.Agents[0].Name)
	assert.Equal(t, []string{"mcp:search"}, resp.Agents[1].ToolTypes)
}

func TestListAgentsRemoteFailure(t *testing.T) {
	gw := &fakeGateway{listErr: cerr.NewError(cerr.Unavailable, "agent platform unreachable", foundry.ErrRemoteUnavailable)}
	s, _ := newTestServer(gw)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/agents", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unavailable")
}

func TestListToolsEmpty(t *testing.T) {
	s, _ := newTestServer(&fakeGateway{})
	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listToolsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Tools)
}

func TestGetAgentUnknownID(t *testing.T) {
	s, _ := newTestServer(&fakeGateway{})
	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/agents/no-such-id", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAgent(t *testing.T) {
	gw := &fakeGateway{created: foundry.AgentSummary{ID: "agent-9", Name: "joker"}}
	s, svc := newTestServer(gw)

	body := `{"name":"joker","purpose":"tell jokes","tool_names":["search"]}`
	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/agents", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp createAgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "agent-9", resp.FoundryAgent.ID)
	assert.NotEmpty(t, resp.LocalConfig.ID)

	// the remote agent is provisioned with the rendered instructions
	assert.Equal(t, "joker", gw.createName)
	assert.Contains(t, gw.createInstructions, "tell jokes")
	assert.Equal(t, []string{"search"}, gw.createTools)

	// and the configuration is retrievable afterwards
	stored, err := svc.Get(context.Background(), resp.LocalConfig.ID)
	require.NoError(t, err)
	assert.Equal(t, "joker", stored.Name)
}

func TestCreateAgentValidation(t *testing.T) {
	s, _ := newTestServer(&fakeGateway{})
	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/agents", `{"purpose":"no name"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAgentRemoteFailureKeepsConfig(t *testing.T) {
	gw := &fakeGateway{createErr: cerr.NewError(cerr.Unavailable, "agent platform unreachable", foundry.ErrRemoteUnavailable)}
	s, svc := newTestServer(gw)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/agents", `{"name":"joker","purpose":"tell jokes"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	configs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "joker", configs[0].Name)
}

func TestChatStreamsLocalConfig(t *testing.T) {
	gw := &fakeGateway{fragments: []foundry.Fragment{{Text: "Hel"}, {Text: "lo"}}}
	s, svc := newTestServer(gw)

	cfg, err := svc.Create(context.Background(), agentconfig.CreateRequest{Name: "joker", Purpose: "tell jokes"})
	require.NoError(t, err)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/agents/"+cfg.ID+"/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")

	body := rec.Body.String()
	assert.Contains(t, body, `data: {"text":"Hel"}`)
	assert.Contains(t, body, `data: {"text":"lo"}`)
	assert.Contains(t, body, "event: done")
	assert.Equal(t, cfg.ID, gw.chatConfigID)
	assert.Empty(t, gw.chatAgentID)
}

func TestChatFallsThroughToRemoteAgent(t *testing.T) {
	gw := &fakeGateway{fragments: []foundry.Fragment{{Text: "hi"}}}
	s, _ := newTestServer(gw)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/agents/asst_123/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "asst_123", gw.chatAgentID)
}

func TestChatMidStreamFailure(t *testing.T) {
	gw := &fakeGateway{fragments: []foundry.Fragment{
		{Text: "Hel"},
		{Err: cerr.NewError(cerr.Unavailable, "stream dropped", foundry.ErrRemoteUnavailable)},
	}}
	s, _ := newTestServer(gw)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/agents/asst_123/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	// delivered fragments stay delivered, then the failure is surfaced
	assert.Contains(t, body, `data: {"text":"Hel"}`)
	assert.Contains(t, body, "event: error")
	assert.Contains(t, body, "stream dropped")
	assert.NotContains(t, body, "event: done")
}

func TestChatStreamOpenFailure(t *testing.T) {
	gw := &fakeGateway{chatErr: cerr.NewError(cerr.NotFound, "agent not found", nil)}
	s, _ := newTestServer(gw)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/agents/asst_123/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestChatRequiresMessage(t *testing.T) {
	s, _ := newTestServer(&fakeGateway{})
	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/agents/asst_123/chat", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownAPIRoute(t *testing.T) {
	s, _ := newTestServer(&fakeGateway{})
	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NotFound")
}
