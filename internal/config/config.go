// Package config resolves the platform settings terraseed runs against.
// Everything is environment-driven with workable defaults, so CI and local
// runs behave the same without a config file.
package config

import (
	"fmt"
	"os"

	"github.com/terraseed/terraseed/internal/models"
)

// Environment variables understood by terraseed. Unset variables fall back
// to the platform defaults below.
const (
	EnvOrgID           = "TERRASEED_ORG_ID"
	EnvBillingAccount  = "TERRASEED_BILLING_ACCOUNT"
	EnvFolderID        = "TERRASEED_FOLDER_ID"
	EnvPlatformProject = "TERRASEED_PLATFORM_PROJECT"
	EnvPlatformNumber  = "TERRASEED_PLATFORM_PROJECT_NUMBER"
	EnvStateBucket     = "TERRASEED_STATE_BUCKET"
	EnvRegion          = "TERRASEED_REGION"
	EnvDomain          = "TERRASEED_DOMAIN"
	EnvRegistryURL     = "TERRASEED_REGISTRY_URL"
	EnvConnection      = "TERRASEED_GITHUB_CONNECTION"
)

// Platform defaults. Override through the environment when targeting a
// different platform project.
const (
	DefaultPlatformProject = "terraseed-platform-prod"
	DefaultPlatformNumber  = "572881255103"
	DefaultStateBucket     = "terraseed-platform-terraform-state"
	DefaultRegion          = "europe-north2"
	DefaultDomain          = "terraseed.dev"
	DefaultRegistryURL     = "https://registry.terraseed.dev"
)

// Config is the resolved platform configuration.
type Config struct {
	// OrgID, BillingAccount and FolderID anchor newly created projects in
	// the organization hierarchy. Only project creation consumes them;
	// importing an existing project works without.
	OrgID          string
	BillingAccount string
	FolderID       string

	// PlatformProject hosts the shared infrastructure: the GitHub
	// connection, the artifact registry and the registry API.
	PlatformProject string

	// PlatformNumber is the platform project's numeric id, used to derive
	// its Cloud Build service agent.
	PlatformNumber string

	// StateBucket is the platform's own state bucket, distinct from the
	// per-client buckets terraseed provisions.
	StateBucket string

	Region      string
	Domain      string
	RegistryURL string

	// Connection pins the GitHub connection used for build triggers, as a
	// bare name or a full resource path. Normally resolved through the
	// registry; the env var forces a specific one.
	Connection string
}

// Load resolves the configuration from the environment.
func Load() *Config {
	return &Config{
		OrgID:           os.Getenv(EnvOrgID),
		BillingAccount:  os.Getenv(EnvBillingAccount),
		FolderID:        os.Getenv(EnvFolderID),
		PlatformProject: envWithDefault(EnvPlatformProject, DefaultPlatformProject),
		PlatformNumber:  envWithDefault(EnvPlatformNumber, DefaultPlatformNumber),
		StateBucket:     envWithDefault(EnvStateBucket, DefaultStateBucket),
		Region:          envWithDefault(EnvRegion, DefaultRegion),
		Domain:          envWithDefault(EnvDomain, DefaultDomain),
		RegistryURL:     envWithDefault(EnvRegistryURL, DefaultRegistryURL),
		Connection:      os.Getenv(EnvConnection),
	}
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.PlatformProject == "" {
		return &models.ConfigError{Field: EnvPlatformProject, Reason: "platform project is required"}
	}
	if c.Region == "" {
		return &models.ConfigError{Field: EnvRegion, Reason: "region is required"}
	}
	if c.RegistryURL == "" {
		return &models.ConfigError{Field: EnvRegistryURL, Reason: "registry URL is required"}
	}
	return nil
}

// ValidateForProjectCreation additionally checks the organization anchors
// consumed only when creating a new GCP project.
func (c *Config) ValidateForProjectCreation() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.OrgID == "" {
		return &models.ConfigError{Field: EnvOrgID, Reason: "organization id is required to create projects"}
	}
	if c.BillingAccount == "" {
		return &models.ConfigError{Field: EnvBillingAccount, Reason: "billing account is required to create projects"}
	}
	if c.FolderID == "" {
		return &models.ConfigError{Field: EnvFolderID, Reason: "folder id is required to create projects"}
	}
	return nil
}

// PlatformBuildAgent returns the platform project's Cloud Build service
// agent. Triggers in the platform project run as this identity before they
// impersonate the client's deploy account.
func (c *Config) PlatformBuildAgent() string {
	return c.PlatformNumber + "@cloudbuild.gserviceaccount.com"
}

// RegistryServiceAccount returns the registry API's runtime identity.
func (c *Config) RegistryServiceAccount() string {
	return fmt.Sprintf("registry-api@%s.iam.gserviceaccount.com", c.PlatformProject)
}

func envWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
