package foundry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	openai "github.com/sashabaranov/go-openai"

	"github.com/agentportal/agentportal/internal/agentconfig"
	"github.com/agentportal/agentportal/pkg/panicerr"
)

// fragmentBuffer bounds the producer/consumer gap on a chat stream. A slow
// consumer backpressures the producer; a cancelled consumer stops it.
const fragmentBuffer = 16

// Gateway adapts facade calls to the remote agent platform. Every operation
// is a stateless request/response or request/stream against the configured
// project endpoint; errors surface directly with no retry, and local config
// ids are never reconciled with remote agent ids.
type Gateway struct {
	deployment string
	api        api
	chat       chatClient
}

// NewGateway builds the production gateway for a project endpoint and default
// model deployment. The credential is the injected capability used for both
// the control plane and the inference plane.
func NewGateway(endpoint, deployment, scope string, cred azcore.TokenCredential) *Gateway {
	return &Gateway{
		deployment: deployment,
		api:        newRESTAPI(endpoint, cred, scope),
		chat:       newAzureChatClient(endpoint, scope, cred),
	}
}

func newGatewayWith(deployment string, a api, c chatClient) *Gateway {
	return &Gateway{deployment: deployment, api: a, chat: c}
}

// ListFoundryAgents fetches a snapshot of all remote agents.
func (g *Gateway) ListFoundryAgents(ctx context.Context) ([]AgentSummary, error) {
	resources, err := g.api.ListAgents(ctx)
	if err != nil {
		return nil, remoteUnavailableError("failed to list agents", err)
	}
	summaries := make([]AgentSummary, 0, len(resources))
	for _, r := range resources {
		s, err := parseAgentSummary(r)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// ListFoundryTools fetches the project connections that represent MCP tool
// servers.
func (g *Gateway) ListFoundryTools(ctx context.Context) ([]ToolSummary, error) {
	conns, err := g.api.ListConnections(ctx)
	if err != nil {
		return nil, remoteUnavailableError("failed to list connections", err)
	}
	tools := make([]ToolSummary, 0, len(conns))
	for _, c := range conns {
		if !strings.Contains(c.Type, mcpConnectionType) {
			continue
		}
		t, err := parseToolSummary(c)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// CreateFoundryAgent creates a remote agent, resolving each tool name to a
// project connection first. An unresolvable name aborts before any creation
// request is issued, so no partial agent is left behind. Calling twice with
// identical arguments creates two remote agents.
func (g *Gateway) CreateFoundryAgent(ctx context.Context, name, instructions, model string, toolNames []string) (AgentSummary, error) {
	if model == "" {
		model = g.deployment
	}

	var tools []toolSpec
	if len(toolNames) > 0 {
		conns, err := g.api.ListConnections(ctx)
		if err != nil {
			return AgentSummary{}, remoteUnavailableError("failed to list connections", err)
		}
		byName := make(map[string]connectionResource, len(conns))
		for _, c := range conns {
			byName[c.Name] = c
		}
		for _, tn := range toolNames {
			conn, ok := byName[tn]
			if !ok {
				return AgentSummary{}, toolNotFoundError(tn)
			}
			tools = append(tools, toolSpec{
				Type:                "mcp",
				ServerLabel:         tn,
				ServerURL:           conn.Target,
				ProjectConnectionID: conn.ID,
				AllowedTools:        []string{},
				RequireApproval:     "never",
			})
		}
	}

	sanitized := sanitizeAgentName(name)
	created, err := g.api.CreateAgent(ctx, createAgentRequest{
		Name: sanitized,
		Definition: agentDefinition{
			Model:        model,
			Instructions: instructions,
			Tools:        tools,
		},
	})
	if err != nil {
		return AgentSummary{}, remoteUnavailableError("failed to create agent", err)
	}
	if created.ID == "" {
		return AgentSummary{}, malformedResponseError("created agent missing id")
	}

	summary := AgentSummary{
		ID:    created.ID,
		Name:  created.Name,
		Model: model,
	}
	if summary.Name == "" {
		summary.Name = sanitized
	}
	for _, t := range tools {
		summary.ToolTypes = append(summary.ToolTypes, toolMarker(t))
	}
	summary.HasTools = len(summary.ToolTypes) > 0
	return summary, nil
}

// ChatWithFoundryAgent opens a streaming chat turn against an existing remote
// agent. Conversation history is not retained here; each call is a fresh turn.
func (g *Gateway) ChatWithFoundryAgent(ctx context.Context, agentID, message string) (<-chan Fragment, error) {
	agent, err := g.api.GetAgent(ctx, agentID)
	if err != nil {
		return nil, remoteUnavailableError(fmt.Sprintf("failed to resolve agent %q", agentID), err)
	}

	model := g.deployment
	instructions := ""
	if agent.Versions != nil && agent.Versions.Latest != nil && agent.Versions.Latest.Definition != nil {
		def := agent.Versions.Latest.Definition
		if def.Model != "" {
			model = def.Model
		}
		instructions = def.Instructions
	}
	return g.streamTurn(ctx, model, instructions, message)
}

// ChatWithConfig streams a chat turn for a locally defined agent: its
// rendered instructions become the system prompt and the default model
// deployment serves the turn.
func (g *Gateway) ChatWithConfig(ctx context.Context, cfg *agentconfig.AgentConfig, message string) (<-chan Fragment, error) {
	return g.streamTurn(ctx, g.deployment, cfg.Instructions, message)
}

func (g *Gateway) streamTurn(ctx context.Context, model, instructions, message string) (<-chan Fragment, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if instructions != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: instructions,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	stream, err := g.chat.StreamChat(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return nil, remoteUnavailableError("failed to open chat stream", err)
	}

	ch := make(chan Fragment, fragmentBuffer)
	go func() {
		defer close(ch)
		defer stream.Close()
		err := panicerr.Safe(func() error {
			return pumpFragments(ctx, stream, ch)
		})()
		if err == nil || ctx.Err() != nil {
			// Clean end of stream, or the caller stopped consuming;
			// nothing left to report.
			return
		}
		select {
		case ch <- Fragment{Err: remoteUnavailableError("stream interrupted", err)}:
		case <-ctx.Done():
		}
	}()
	return ch, nil
}

// pumpFragments forwards non-empty deltas until the stream ends or the
// consumer goes away.
func pumpFragments(ctx context.Context, stream chatStream, ch chan<- Fragment) error {
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		text := resp.Choices[0].Delta.Content
		if text == "" {
			continue
		}
		select {
		case ch <- Fragment{Text: text}:
		case <-ctx.Done():
			return nil
		}
	}
}

var (
	invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9-]`)
	hyphenRuns       = regexp.MustCompile(`-+`)
)

// sanitizeAgentName maps an arbitrary display name onto the platform's naming
// rules: alphanumeric ends, hyphens inside, at most 63 characters.
func sanitizeAgentName(name string) string {
	s := invalidNameChars.ReplaceAllString(name, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 63 {
		s = s[:63]
	}
	s = strings.TrimRight(s, "-")
	if s == "" {
		s = "agent"
	}
	return s
}
