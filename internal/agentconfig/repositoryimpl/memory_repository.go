package repositoryimpl

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentportal/agentportal/internal/agentconfig"
	"github.com/agentportal/agentportal/pkg/cerr"
)

// MemoryRepository is the default in-process store. Insertion order is kept
// explicitly so List reflects creation order.
type MemoryRepository struct {
	mu      sync.RWMutex
	configs map[string]*agentconfig.AgentConfig
	order   []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		configs: make(map[string]*agentconfig.AgentConfig),
	}
}

func (r *MemoryRepository) Create(_ context.Context, c *agentconfig.AgentConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[c.ID]; ok {
		return cerr.NewError(cerr.AlreadyExists, "agent config already exists", nil)
	}
	r.configs[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*agentconfig.AgentConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.configs[id]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, fmt.Sprintf("agent config %q not found", id), nil)
	}
	return c, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*agentconfig.AgentConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*agentconfig.AgentConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.configs[id])
	}
	return out, nil
}
