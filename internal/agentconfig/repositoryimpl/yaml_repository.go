package repositoryimpl

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/agentportal/agentportal/internal/agentconfig"
	"github.com/agentportal/agentportal/pkg/cerr"
	"github.com/agentportal/agentportal/pkg/storage"
)

// AgentsPrefix is the storage prefix holding agent definitions, exported for
// the directory watcher.
const AgentsPrefix = "agents"

// YAMLRepository persists each config as one yaml document under agents/.
// IDs are ULIDs, so lexically sorted paths come back in creation order.
type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", AgentsPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, c *agentconfig.AgentConfig) error {
	exists, err := r.storage.Exists(ctx, path(c.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("agent config", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "agent config already exists", nil)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal agent config: %w", err))
	}
	if err := r.storage.Write(ctx, path(c.ID), data); err != nil {
		return cerr.WrapStorageWriteError("agent config", err)
	}
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*agentconfig.AgentConfig, error) {
	data, err := r.storage.Read(ctx, path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("agent config", err)
	}
	var c agentconfig.AgentConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal agent config: %w", err))
	}
	return &c, nil
}

func (r *YAMLRepository) List(ctx context.Context) ([]*agentconfig.AgentConfig, error) {
	paths, err := r.storage.List(ctx, AgentsPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("agent configs", err)
	}

	sort.Strings(paths)

	var all []*agentconfig.AgentConfig
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var c agentconfig.AgentConfig
		if err := yaml.Unmarshal(data, &c); err != nil {
			continue
		}
		all = append(all, &c)
	}
	return all, nil
}
