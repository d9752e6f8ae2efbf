package agentconfig

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/agentportal/agentportal/pkg/cerr"
)

// Service is the factory side of the configuration store: it renders
// instructions, assigns identifiers and delegates persistence to a Repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateRequest struct {
	Name         string
	Description  string
	Purpose      string
	Personality  string
	Capabilities []string
	Rules        []string
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*AgentConfig, error) {
	if req.Name == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "name is required", nil)
	}
	if req.Purpose == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "purpose is required", nil)
	}

	personality := req.Personality
	if personality == "" {
		personality = DefaultPersonality
	}

	c := &AgentConfig{
		ID:           ulid.Make().String(),
		Name:         req.Name,
		Description:  req.Description,
		Purpose:      req.Purpose,
		Personality:  personality,
		Capabilities: req.Capabilities,
		Rules:        req.Rules,
		Instructions: RenderInstructions(req.Purpose, personality, req.Capabilities, req.Rules),
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*AgentConfig, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*AgentConfig, error) {
	return s.repo.List(ctx)
}
