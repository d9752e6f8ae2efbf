package foundry

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// NewCredential resolves the configured credential kind to a token source.
// "cli" uses the developer's CLI session; "default" walks the platform's
// default chain (environment, workload identity, managed identity, CLI).
func NewCredential(kind string) (azcore.TokenCredential, error) {
	switch kind {
	case "cli", "":
		cred, err := azidentity.NewAzureCLICredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create CLI credential: %w", err)
		}
		return cred, nil
	case "default":
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create default credential: %w", err)
		}
		return cred, nil
	default:
		return nil, fmt.Errorf("unknown credential kind %q", kind)
	}
}
