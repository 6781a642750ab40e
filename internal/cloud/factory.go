// Package cloud assembles the provider-specific clients behind the
// control-plane interfaces. Commands connect once and hand the bundle to
// the bootstrap and trigger orchestrators.
package cloud

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/terraseed/terraseed/internal"
	"github.com/terraseed/terraseed/internal/cloud/gcp"
)

// Services bundles the control-plane interfaces for one provider session.
type Services struct {
	State    internal.StateStore
	Identity internal.IdentityManager
	Builds   internal.BuildAdmin
}

// Connect opens a GCP session with application default credentials and
// returns the interface bundle. Credential problems surface here, before
// any orchestration starts.
func Connect(ctx context.Context, logger zerolog.Logger, opts ...gcp.Option) (*Services, error) {
	client, err := gcp.Connect(ctx, logger, opts...)
	if err != nil {
		return nil, err
	}
	return &Services{
		State:    client,
		Identity: client,
		Builds:   client,
	}, nil
}
