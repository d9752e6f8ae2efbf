package agentconfig

import "context"

// Repository stores agent configurations. List returns configs in creation
// order. Implementations return cerr.NotFound for unknown ids.
type Repository interface {
	Create(ctx context.Context, c *AgentConfig) error
	Get(ctx context.Context, id string) (*AgentConfig, error)
	List(ctx context.Context) ([]*AgentConfig, error)
}
