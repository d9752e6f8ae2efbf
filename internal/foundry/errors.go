package foundry

import (
	"errors"
	"fmt"

	"github.com/agentportal/agentportal/pkg/cerr"
)

// Sentinels for the gateway's failure modes. They are joined into cerr.Error
// values so callers can branch with errors.Is while the HTTP layer maps the
// cerr code to a status.
var (
	// ErrToolNotFound: a named MCP tool does not resolve to a connection.
	ErrToolNotFound = errors.New("tool not found")
	// ErrRemoteUnavailable: network/auth/platform-side failure, including
	// mid-stream drops. Never retried at this layer.
	ErrRemoteUnavailable = errors.New("remote platform unavailable")
	// ErrMalformedResponse: the platform returned a payload missing required
	// fields. Optional fields are never trusted implicitly.
	ErrMalformedResponse = errors.New("malformed platform response")
)

func toolNotFoundError(name string) error {
	return cerr.NewError(cerr.NotFound, fmt.Sprintf("tool %q not found", name), ErrToolNotFound)
}

func remoteUnavailableError(msg string, err error) error {
	return cerr.NewError(cerr.Unavailable, msg, errors.Join(ErrRemoteUnavailable, err))
}

func malformedResponseError(msg string) error {
	return cerr.NewError(cerr.Internal, msg, ErrMalformedResponse)
}
