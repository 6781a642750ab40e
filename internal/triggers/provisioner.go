// Package triggers provisions the Cloud Build triggers that deploy a
// project. Triggers live in the platform project next to the GitHub
// connection and impersonate the client project's deploy account; the
// provisioner validates configuration up front, then degrades per
// environment instead of failing the whole batch.
package triggers

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/terraseed/terraseed/internal"
	"github.com/terraseed/terraseed/internal/gcperrors"
	"github.com/terraseed/terraseed/internal/models"
)

// impersonationProbePermissions are checked (log-only) before creating
// triggers when diagnostics are enabled.
var impersonationProbePermissions = []string{
	"iam.serviceAccounts.actAs",
	"iam.serviceAccounts.getAccessToken",
	"iam.serviceAccounts.implicitDelegation",
}

// impersonationProber is the slice of the identity surface the pre-flight
// diagnostics use.
type impersonationProber interface {
	MintAccessToken(ctx context.Context, email string) error
	TestServiceAccountPermissions(ctx context.Context, project, email string, permissions []string) ([]string, error)
}

// Request describes one provisioning run.
type Request struct {
	// ProjectSlug is the registry identifier of the project; trigger names
	// are "<slug>-<environment>".
	ProjectSlug string

	// ClientProject is the GCP project that owns the deploy account.
	ClientProject string

	// DeployAccount is the deploy service account email in ClientProject.
	DeployAccount string

	// Region is where deploys land; it becomes the _REGION substitution.
	Region string

	// PlatformProject owns the GitHub connection and the triggers.
	PlatformProject string

	// Connection is the GitHub connection, as a bare name or full resource
	// path. Empty means discover the first enabled connection.
	Connection string

	// ConnectionRegion is where the connection, and so the triggers, live.
	ConnectionRegion string

	// RepoURL is the HTTPS remote of the repository to bind.
	RepoURL string

	// ArtifactRepo is the image registry path for the _ARTIFACT_REPO
	// substitution.
	ArtifactRepo string

	Environments []models.TriggerEnvironment

	// Diagnose enables the log-only impersonation probes.
	Diagnose bool
}

// Provisioner creates build triggers through the build admin surface.
type Provisioner struct {
	builds   internal.BuildAdmin
	identity impersonationProber
	logger   zerolog.Logger
}

// Option adjusts provisioner construction.
type Option func(*Provisioner)

// WithLogger substitutes the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Provisioner) {
		p.logger = logger
	}
}

// New builds a provisioner. identity may be nil when diagnostics are never
// requested.
func New(builds internal.BuildAdmin, identity impersonationProber, opts ...Option) *Provisioner {
	p := &Provisioner{
		builds:   builds,
		identity: identity,
		logger:   log.With().Str("component", "triggers").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision validates the environments, resolves the linked repository and
// creates one trigger per environment. Configuration and repository
// resolution problems are fatal and nothing is attempted; per-environment
// API failures are collected in the result instead.
func (p *Provisioner) Provision(ctx context.Context, req Request) (*models.TriggerResult, error) {
	if len(req.Environments) == 0 {
		return nil, &models.TriggerConfigError{Reason: "no environments requested"}
	}
	for _, env := range req.Environments {
		if err := env.Validate(); err != nil {
			return nil, err
		}
	}

	connection, err := p.resolveConnection(ctx, req)
	if err != nil {
		return nil, err
	}
	repo, err := p.resolveRepository(ctx, req, connection)
	if err != nil {
		return nil, err
	}

	if req.Diagnose && p.identity != nil {
		p.diagnose(ctx, req)
	}

	result := &models.TriggerResult{}
	for _, env := range req.Environments {
		record := p.provisionEnvironment(ctx, req, repo, env)
		if record.Status == models.TriggerStatusFailed {
			result.Failed = append(result.Failed, record)
			continue
		}
		result.Created = append(result.Created, record)
	}
	return result, nil
}

// resolveConnection returns the configured connection, or discovers the
// first enabled one in the platform project.
func (p *Provisioner) resolveConnection(ctx context.Context, req Request) (string, error) {
	if req.Connection != "" {
		return req.Connection, nil
	}
	connections, err := p.builds.ListConnections(ctx, req.PlatformProject, req.ConnectionRegion)
	if err != nil {
		return "", fmt.Errorf("listing build connections: %w", gcperrors.Classify(err))
	}
	for _, conn := range connections {
		if !conn.Disabled {
			p.logger.Info().Str("connection", conn.Name).Msg("using discovered build connection")
			return conn.Name, nil
		}
	}
	return "", &models.ProvisionError{
		Step:     "trigger",
		Resource: "github connection",
		Project:  req.PlatformProject,
		Cause:    fmt.Errorf("no enabled build connection in %s/%s", req.PlatformProject, req.ConnectionRegion),
	}
}

// resolveRepository finds the connection repository whose remote matches
// the requested repo URL. Not finding one is fatal: someone has to link
// the repository in the console before triggers can bind to it.
func (p *Provisioner) resolveRepository(ctx context.Context, req Request, connection string) (string, error) {
	repos, err := p.builds.ListRepositories(ctx, req.PlatformProject, req.ConnectionRegion, connection)
	if err != nil {
		return "", fmt.Errorf("listing connection repositories: %w", gcperrors.Classify(err))
	}
	want := normalizeRemote(req.RepoURL)
	for _, repo := range repos {
		if normalizeRemote(repo.RemoteURI) == want {
			p.logger.Debug().Str("repository", repo.Name).Msg("matched linked repository")
			return repo.Name, nil
		}
	}
	return "", &models.ProvisionError{
		Step:     "trigger",
		Resource: req.RepoURL,
		Project:  req.PlatformProject,
		Cause:    fmt.Errorf("repository is not linked to connection %q; link it and retry", connection),
	}
}

// normalizeRemote makes clone URLs comparable: connections report some
// remotes with a .git suffix and some without.
func normalizeRemote(url string) string {
	return strings.TrimSuffix(strings.TrimSuffix(url, "/"), ".git")
}

func (p *Provisioner) provisionEnvironment(ctx context.Context, req Request, repo string, env models.TriggerEnvironment) models.TriggerRecord {
	name := fmt.Sprintf("%s-%s", req.ProjectSlug, env.Name)
	record := models.TriggerRecord{Environment: env.Name, TriggerName: name}

	spec := internal.TriggerSpec{
		Name:          name,
		Description:   fmt.Sprintf("Deploys %s to %s on push", req.ProjectSlug, env.Name),
		Repository:    repo,
		BranchPattern: env.BranchPattern,
		TagPattern:    env.TagPattern,
		BuildFile:     env.BuildFile(),
		// The account lives in the client project while the trigger lives
		// in the platform project; the full resource path crosses that
		// boundary.
		ServiceAccount: fmt.Sprintf("projects/%s/serviceAccounts/%s", req.ClientProject, req.DeployAccount),
		Substitutions: map[string]string{
			"_GCP_PROJECT":     req.ClientProject,
			"_REGION":          req.Region,
			"_SERVICE_ACCOUNT": req.DeployAccount,
			"_ENVIRONMENT":     env.Name,
			"_ARTIFACT_REPO":   req.ArtifactRepo,
		},
		RequireApproval: env.RequireApproval,
	}

	info, err := p.builds.CreateTrigger(ctx, req.PlatformProject, req.ConnectionRegion, spec)
	if err == nil {
		p.logger.Info().Str("trigger", name).Str("id", info.ID).Msg("trigger created")
		record.Status = models.TriggerStatusCreated
		record.TriggerID = info.ID
		return record
	}
	if gcperrors.IsAlreadyExists(err) {
		return p.adoptExisting(ctx, req, record)
	}

	classified := gcperrors.ClassifyResource(err, name)
	p.logger.Error().Str("trigger", name).Str("kind", string(classified.Kind)).Err(err).Msg("trigger creation failed")
	record.Status = models.TriggerStatusFailed
	record.Detail = classified.Message
	if classified.Remediation != "" {
		record.Detail += " (" + classified.Remediation + ")"
	}
	return record
}

// adoptExisting resolves the id of a trigger that already exists. When the
// listing itself fails, the record degrades to unverified rather than
// failing an environment whose trigger is in place.
func (p *Provisioner) adoptExisting(ctx context.Context, req Request, record models.TriggerRecord) models.TriggerRecord {
	existing, err := p.builds.ListTriggers(ctx, req.PlatformProject, req.ConnectionRegion)
	if err != nil {
		p.logger.Warn().Str("trigger", record.TriggerName).Err(err).
			Msg("trigger exists but listing failed, leaving unverified")
		record.Status = models.TriggerStatusUnverified
		record.Detail = "exists; id not verified"
		return record
	}
	for _, t := range existing {
		if t.Name == record.TriggerName {
			p.logger.Info().Str("trigger", t.Name).Str("id", t.ID).Msg("trigger already exists")
			record.Status = models.TriggerStatusExisting
			record.TriggerID = t.ID
			return record
		}
	}
	record.Status = models.TriggerStatusUnverified
	record.Detail = "creation conflicted but trigger not listed"
	return record
}

// diagnose runs log-only probes of the impersonation chain. Failures are
// reported and ignored: trigger creation may still succeed when the caller
// merely lacks probe permissions.
func (p *Provisioner) diagnose(ctx context.Context, req Request) {
	if err := p.identity.MintAccessToken(ctx, req.DeployAccount); err != nil {
		p.logger.Warn().Err(err).Msg("impersonation probe: cannot mint token for deploy account")
	} else {
		p.logger.Debug().Str("account", req.DeployAccount).Msg("impersonation probe: token minted")
	}

	granted, err := p.identity.TestServiceAccountPermissions(ctx, req.ClientProject, req.DeployAccount, impersonationProbePermissions)
	switch {
	case err != nil:
		p.logger.Warn().Err(err).Msg("impersonation probe: permission check failed")
	case len(granted) < len(impersonationProbePermissions):
		p.logger.Warn().Strs("granted", granted).Msg("impersonation probe: some permissions missing")
	default:
		p.logger.Debug().Msg("impersonation probe: all permissions granted")
	}

	if _, err := p.builds.ListTriggers(ctx, req.PlatformProject, req.ConnectionRegion); err != nil {
		p.logger.Warn().Err(err).Msg("impersonation probe: cannot list triggers")
	}
}
