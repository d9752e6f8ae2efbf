package foundry

// AgentSummary is a read-only projection of a remote agent resource. It is a
// snapshot fetched per call; nothing is cached or invalidated locally.
type AgentSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Model       string   `json:"model"`
	CreatedAt   string   `json:"created_at"`
	HasTools    bool     `json:"has_tools"`
	ToolTypes   []string `json:"tool_types,omitempty"`
}

// ToolSummary is a read-only projection of a remote MCP tool connection.
type ToolSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Target string `json:"target"`
	Type   string `json:"tool_type"`
}

// Fragment is one unit of a streamed chat response. The sequence is finite
// and forward-only; a non-nil Err is terminal and the channel is closed right
// after it. Fragments already delivered are never retracted.
type Fragment struct {
	Text string
	Err  error
}

// agentResource mirrors the loosely-typed agent payload of the platform.
// Everything beyond id and name is optional.
type agentResource struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Versions *agentVersions `json:"versions,omitempty"`
}

type agentVersions struct {
	Latest *agentVersion `json:"latest,omitempty"`
}

type agentVersion struct {
	Version     string           `json:"version,omitempty"`
	Description string           `json:"description,omitempty"`
	CreatedAt   string           `json:"created_at,omitempty"`
	Definition  *agentDefinition `json:"definition,omitempty"`
}

type agentDefinition struct {
	Model        string     `json:"model,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
	Tools        []toolSpec `json:"tools,omitempty"`
}

// toolSpec is the tool entry attached to an agent definition. For MCP tools
// the connection fields identify the server.
type toolSpec struct {
	Type                string   `json:"type"`
	ServerLabel         string   `json:"server_label,omitempty"`
	ServerURL           string   `json:"server_url,omitempty"`
	ProjectConnectionID string   `json:"project_connection_id,omitempty"`
	AllowedTools        []string `json:"allowed_tools"`
	RequireApproval     string   `json:"require_approval,omitempty"`
}

// connectionResource mirrors a project connection payload.
type connectionResource struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Target string `json:"target"`
}

// parseAgentSummary is the explicit parse step for remote agent payloads:
// required fields missing mean a malformed response, optional fields default.
func parseAgentSummary(a agentResource) (AgentSummary, error) {
	if a.ID == "" {
		return AgentSummary{}, malformedResponseError("agent resource missing id")
	}
	name := a.Name
	if name == "" {
		name = "unnamed"
	}
	s := AgentSummary{
		ID:   a.ID,
		Name: name,
	}
	if a.Versions == nil || a.Versions.Latest == nil {
		return s, nil
	}
	latest := a.Versions.Latest
	s.Description = latest.Description
	s.CreatedAt = latest.CreatedAt
	if latest.Definition != nil {
		s.Model = latest.Definition.Model
		for _, t := range latest.Definition.Tools {
			s.ToolTypes = append(s.ToolTypes, toolMarker(t))
		}
		s.HasTools = len(s.ToolTypes) > 0
	}
	return s, nil
}

// toolMarker renders a tool attachment for summaries. Labeled tools include
// the server label so distinct attachments of the same type stay
// distinguishable; the create path renders the same form.
func toolMarker(t toolSpec) string {
	typ := t.Type
	if typ == "" {
		typ = "unknown"
	}
	if t.ServerLabel == "" {
		return typ
	}
	return typ + ":" + t.ServerLabel
}

// mcpConnectionType marks connections that represent MCP tool servers.
const mcpConnectionType = "REMOTE_TOOL"

func parseToolSummary(c connectionResource) (ToolSummary, error) {
	if c.ID == "" || c.Name == "" {
		return ToolSummary{}, malformedResponseError("connection resource missing id or name")
	}
	return ToolSummary{
		ID:     c.ID,
		Name:   c.Name,
		Target: c.Target,
		Type:   "mcp",
	}, nil
}
