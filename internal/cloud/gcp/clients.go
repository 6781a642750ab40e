// internal/cloud/gcp/clients.go
// Google Cloud implementation of the control-plane interfaces. All calls go
// through the discovery-based REST clients with application default
// credentials resolved once at connect time.
package gcp

import (
	"context"
	"fmt"

	"github.com/juju/clock"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	cloudbuild "google.golang.org/api/cloudbuild/v1"
	cloudbuildv2 "google.golang.org/api/cloudbuild/v2"
	"google.golang.org/api/cloudresourcemanager/v1"
	"google.golang.org/api/iam/v1"
	"google.golang.org/api/iamcredentials/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/storage/v1"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Client bundles the per-API services terraseed needs. The surface is
// limited to what bootstrap and trigger provisioning call.
type Client struct {
	storage   *storage.Service
	iam       *iam.Service
	projects  *cloudresourcemanager.Service
	builds    *cloudbuild.Service
	repos     *cloudbuildv2.Service
	shortterm *iamcredentials.Service

	clock  clock.Clock
	logger zerolog.Logger
}

// Option adjusts client construction.
type Option func(*Client)

// WithClock substitutes the clock used for retry pacing.
func WithClock(c clock.Clock) Option {
	return func(cl *Client) {
		cl.clock = c
	}
}

// Connect resolves application default credentials and opens the REST
// clients. Credential resolution failures surface here rather than on
// first use.
func Connect(ctx context.Context, logger zerolog.Logger, opts ...Option) (*Client, error) {
	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("resolving application default credentials: %w", err)
	}
	clientOpts := []option.ClientOption{option.WithCredentials(creds)}

	storageSvc, err := storage.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("opening storage client: %w", err)
	}
	iamSvc, err := iam.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("opening iam client: %w", err)
	}
	crmSvc, err := cloudresourcemanager.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("opening resource manager client: %w", err)
	}
	buildSvc, err := cloudbuild.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("opening cloud build client: %w", err)
	}
	repoSvc, err := cloudbuildv2.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("opening cloud build repositories client: %w", err)
	}
	credsSvc, err := iamcredentials.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("opening iam credentials client: %w", err)
	}

	c := &Client{
		storage:   storageSvc,
		iam:       iamSvc,
		projects:  crmSvc,
		builds:    buildSvc,
		repos:     repoSvc,
		shortterm: credsSvc,
		clock:     clock.WallClock,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}
