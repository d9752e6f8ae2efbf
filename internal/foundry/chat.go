package foundry

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	openai "github.com/sashabaranov/go-openai"
)

// chatStream abstracts go-openai's streaming reader so tests can script
// fragment sequences and mid-stream failures.
type chatStream interface {
	Recv() (openai.ChatCompletionStreamResponse, error)
	Close() error
}

// chatClient is the inference-plane seam. Each call is an independent turn;
// no conversation state is kept on this side.
type chatClient interface {
	StreamChat(ctx context.Context, req openai.ChatCompletionRequest) (chatStream, error)
}

// azureChatClient wraps go-openai against the platform's OpenAI-compatible
// inference surface. A fresh bearer token is acquired per call, mirroring the
// stateless per-call construction of every gateway operation.
type azureChatClient struct {
	endpoint string
	scope    string
	cred     azcore.TokenCredential
}

func newAzureChatClient(endpoint, scope string, cred azcore.TokenCredential) *azureChatClient {
	return &azureChatClient{
		endpoint: endpoint,
		scope:    scope,
		cred:     cred,
	}
}

func (c *azureChatClient) StreamChat(ctx context.Context, req openai.ChatCompletionRequest) (chatStream, error) {
	tok, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{c.scope}})
	if err != nil {
		return nil, err
	}
	cfg := openai.DefaultAzureConfig(tok.Token, c.endpoint)
	cfg.APIType = openai.APITypeAzureAD
	client := openai.NewClientWithConfig(cfg)
	return client.CreateChatCompletionStream(ctx, req)
}
