package foundry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

// apiVersion pins the agent platform's control-plane API.
const apiVersion = "2025-05-15-preview"

// api is the control-plane seam: listing and creating agents and listing
// project connections. The production implementation talks REST with bearer
// tokens; tests substitute a fake.
type api interface {
	ListAgents(ctx context.Context) ([]agentResource, error)
	GetAgent(ctx context.Context, id string) (agentResource, error)
	CreateAgent(ctx context.Context, req createAgentRequest) (agentResource, error)
	ListConnections(ctx context.Context) ([]connectionResource, error)
}

type createAgentRequest struct {
	Name       string          `json:"name"`
	Definition agentDefinition `json:"definition"`
}

// listResponse is the envelope of the platform's list endpoints.
type listResponse[T any] struct {
	Value []T `json:"value"`
}

// restAPI implements api over an azcore pipeline with a bearer-token policy
// fed by the injected credential.
type restAPI struct {
	endpoint string
	pipeline runtime.Pipeline
}

func newRESTAPI(endpoint string, cred azcore.TokenCredential, scope string) *restAPI {
	authPolicy := runtime.NewBearerTokenPolicy(cred, []string{scope}, nil)
	pl := runtime.NewPipeline("agentportal", version, runtime.PipelineOptions{
		PerRetry: []policy.Policy{authPolicy},
	}, nil)
	return &restAPI{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		pipeline: pl,
	}
}

// version is the client's reported module version.
const version = "v0.1.0"

func (a *restAPI) do(ctx context.Context, method, path string, body, out any) error {
	req, err := runtime.NewRequest(ctx, method, runtime.JoinPaths(a.endpoint, path))
	if err != nil {
		return err
	}
	req.Raw().URL.RawQuery = url.Values{"api-version": []string{apiVersion}}.Encode()
	if body != nil {
		if err := runtime.MarshalAsJSON(req, body); err != nil {
			return err
		}
	}
	resp, err := a.pipeline.Do(req)
	if err != nil {
		return err
	}
	if !runtime.HasStatusCode(resp, http.StatusOK, http.StatusCreated) {
		return runtime.NewResponseError(resp)
	}
	payload, err := runtime.Payload(resp)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (a *restAPI) ListAgents(ctx context.Context) ([]agentResource, error) {
	var out listResponse[agentResource]
	if err := a.do(ctx, http.MethodGet, "agents", nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

func (a *restAPI) GetAgent(ctx context.Context, id string) (agentResource, error) {
	var out agentResource
	if err := a.do(ctx, http.MethodGet, "agents/"+url.PathEscape(id), nil, &out); err != nil {
		return agentResource{}, err
	}
	return out, nil
}

func (a *restAPI) CreateAgent(ctx context.Context, req createAgentRequest) (agentResource, error) {
	var out agentResource
	if err := a.do(ctx, http.MethodPost, "agents", req, &out); err != nil {
		return agentResource{}, err
	}
	return out, nil
}

func (a *restAPI) ListConnections(ctx context.Context) ([]connectionResource, error) {
	var out listResponse[connectionResource]
	if err := a.do(ctx, http.MethodGet, "connections", nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}
