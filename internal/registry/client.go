// Package registry is the HTTP client for the platform registry API, the
// source of truth for clients, projects and shared platform settings.
// Requests authenticate with an identity token minted through the
// operator's gcloud session, so the CLI carries no OAuth flow of its own.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/terraseed/terraseed/internal/models"
)

const (
	apiPrefix      = "/api/v1"
	requestTimeout = 30 * time.Second
	tokenTimeout   = 10 * time.Second

	// tokenLifetime is how long a minted identity token is reused. Tokens
	// are valid for an hour; refresh well before that.
	tokenLifetime = 45 * time.Minute
)

// TokenSource yields bearer tokens for the registry audience.
type TokenSource interface {
	IdentityToken(ctx context.Context, audience string) (string, error)
}

// gcloudTokenSource mints identity tokens through gcloud and caches them
// for most of their lifetime.
type gcloudTokenSource struct {
	mu      sync.Mutex
	token   string
	fetched time.Time
}

func (s *gcloudTokenSource) IdentityToken(ctx context.Context, audience string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && time.Since(s.fetched) < tokenLifetime {
		return s.token, nil
	}
	ctx, cancel := context.WithTimeout(ctx, tokenTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "gcloud", "auth", "print-identity-token", "--audiences="+audience).Output()
	if err != nil {
		return "", fmt.Errorf("minting identity token: %w", err)
	}
	s.token = strings.TrimSpace(string(out))
	s.fetched = time.Now()
	return s.token, nil
}

// ClientRecord is an agency client, the billing umbrella projects hang off.
type ClientRecord struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Subdomain      string `json:"subdomain,omitempty"`
	BillingContact string `json:"billing_contact,omitempty"`
}

// EnvironmentRecord describes one deploy environment of a project.
type EnvironmentRecord struct {
	Name             string `json:"name"`
	DatabaseInstance string `json:"database_instance,omitempty"`
	AutoDeploy       bool   `json:"auto_deploy"`
	RequiresApproval bool   `json:"requires_approval"`
}

// ServiceRecord describes one deployable service of a project, one entry
// per environment it deploys to.
type ServiceRecord struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	Environment     string `json:"environment,omitempty"`
	CloudRunService string `json:"cloud_run_service,omitempty"`
	CloudRunRegion  string `json:"cloud_run_region,omitempty"`
	DockerfilePath  string `json:"dockerfile_path,omitempty"`
	CloudBuildFile  string `json:"cloudbuild_file,omitempty"`
}

// ProjectRecord is the registry's view of one onboarded project.
type ProjectRecord struct {
	ID                   string              `json:"id"`
	ClientID             string              `json:"client_id"`
	Name                 string              `json:"name"`
	Subdomain            string              `json:"subdomain,omitempty"`
	FullDomain           string              `json:"full_domain,omitempty"`
	GCPProjectID         string              `json:"gcp_project_id"`
	GitHubRepo           string              `json:"github_repo,omitempty"`
	TerraformStateBucket string              `json:"terraform_state_bucket,omitempty"`
	TerraformStatePrefix string              `json:"terraform_state_prefix,omitempty"`
	ProjectType          string              `json:"project_type,omitempty"`
	Environments         []EnvironmentRecord `json:"environments,omitempty"`
	Services             []ServiceRecord     `json:"services,omitempty"`
}

// PlatformConfig is the shared platform configuration served by the
// registry: where the GitHub connection and the artifact registry live.
type PlatformConfig struct {
	PlatformProject        string `json:"platform_project_id"`
	GitHubConnection       string `json:"github_connection"`
	GitHubConnectionRegion string `json:"github_connection_region"`
	RegistryLocation       string `json:"shared_registry_location"`
	RegistryRepo           string `json:"shared_registry_repo"`
}

// ArtifactRepo returns the docker path of the shared artifact registry.
func (p *PlatformConfig) ArtifactRepo() string {
	return fmt.Sprintf("%s-docker.pkg.dev/%s/%s", p.RegistryLocation, p.PlatformProject, p.RegistryRepo)
}

// Client talks to the registry API.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	logger zerolog.Logger
}

// Option adjusts client construction.
type Option func(*Client)

// WithHTTPClient substitutes the HTTP client. Tests use this.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithTokenSource substitutes the token source. Tests use this.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithLogger substitutes the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a client for the registry at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimSuffix(baseURL, "/"),
		http:   &http.Client{Timeout: requestTimeout},
		tokens: &gcloudTokenSource{},
		logger: log.With().Str("component", "registry").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterClient creates the client record. An HTTP 409 means the client
// is already registered, which is success for onboarding purposes; the
// second return reports whether this call created it.
func (c *Client) RegisterClient(ctx context.Context, record ClientRecord) (*ClientRecord, bool, error) {
	var out ClientRecord
	status, err := c.do(ctx, "register-client", http.MethodPost, "/clients", record, &out)
	if err != nil {
		if status == http.StatusConflict {
			c.logger.Info().Str("client", record.ID).Msg("client already registered")
			existing := record
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &out, true, nil
}

// RegisterProject creates the project record, with the same 409 handling
// as RegisterClient.
func (c *Client) RegisterProject(ctx context.Context, record ProjectRecord) (*ProjectRecord, bool, error) {
	var out ProjectRecord
	status, err := c.do(ctx, "register-project", http.MethodPost, "/projects", record, &out)
	if err != nil {
		if status == http.StatusConflict {
			c.logger.Info().Str("project", record.ID).Msg("project already registered")
			existing := record
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &out, true, nil
}

// GetProject fetches one project record. A missing project is (nil, nil).
func (c *Client) GetProject(ctx context.Context, id string) (*ProjectRecord, error) {
	var out ProjectRecord
	status, err := c.do(ctx, "get-project", http.MethodGet, "/projects/"+url.PathEscape(id), nil, &out)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// ListProjects lists the projects of one client.
func (c *Client) ListProjects(ctx context.Context, clientID string) ([]ProjectRecord, error) {
	var out []ProjectRecord
	path := "/projects?client_id=" + url.QueryEscape(clientID)
	if _, err := c.do(ctx, "list-projects", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPlatformConfig fetches the shared platform configuration.
func (c *Client) GetPlatformConfig(ctx context.Context) (*PlatformConfig, error) {
	var out PlatformConfig
	if _, err := c.do(ctx, "platform-config", http.MethodGet, "/platform/config", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, payload, dest any) (int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, &models.RegistryError{Operation: operation, Cause: err}
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+apiPrefix+path, body)
	if err != nil {
		return 0, &models.RegistryError{Operation: operation, Cause: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.tokens.IdentityToken(ctx, c.base)
	if err != nil {
		return 0, &models.RegistryError{Operation: operation, Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &models.RegistryError{Operation: operation, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		message := strings.TrimSpace(string(detail))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, &models.RegistryError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Cause:      errors.New(message),
		}
	}
	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return resp.StatusCode, &models.RegistryError{
				Operation: operation,
				Cause:     fmt.Errorf("decoding response: %w", err),
			}
		}
	}
	return resp.StatusCode, nil
}
