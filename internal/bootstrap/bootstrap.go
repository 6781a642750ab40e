// Package bootstrap provisions the trust objects a generated workspace
// depends on before terraform can run: the remote-state bucket, the deploy
// service account with its role grants, and the shared-VPC access grant.
// Every step is idempotent; steps run in a fixed order and a failed step is
// recorded without stopping the ones after it.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/terraseed/terraseed/internal"
	"github.com/terraseed/terraseed/internal/gcperrors"
	"github.com/terraseed/terraseed/internal/models"
)

// DeployAccountID is the short name of the service account terraseed
// creates for Cloud Build deployments.
const DeployAccountID = "deployer"

const (
	deployDisplayName = "Cloud Build Deployer"
	deployDescription = "Deploys services through Cloud Build"

	// serverlessAgentDomain hosts the Cloud Run service agents that attach
	// serverless workloads to VPC connectors in the host project.
	serverlessAgentDomain = "serverless-robot-prod.iam.gserviceaccount.com"

	roleServiceAccountUser = "roles/iam.serviceAccountUser"
	roleTokenCreator       = "roles/iam.serviceAccountTokenCreator"
	roleVPCAccessUser      = "roles/vpcaccess.user"
	buildAgentDomain       = "cloudbuild.gserviceaccount.com"
)

// deployProjectRoles are (re-)asserted on the client project every run,
// whether or not the deploy account already existed, so drifted projects
// heal on the next onboarding pass.
var deployProjectRoles = []string{
	"roles/run.admin",
	"roles/secretmanager.secretAccessor",
	"roles/artifactregistry.writer",
}

// DeployEmail returns the deploy service account address for a project.
func DeployEmail(projectID string) string {
	return fmt.Sprintf("%s@%s.iam.gserviceaccount.com", DeployAccountID, projectID)
}

// Platform identifies the shared platform project whose agents receive
// impersonation rights on the deploy account.
type Platform struct {
	// Project is the platform project id.
	Project string

	// Number is the platform project's numeric id, used to derive its
	// Cloud Build service agent.
	Number string
}

// Request carries the identifiers one bootstrap run operates on.
type Request struct {
	// ProjectID is the client project being onboarded.
	ProjectID string

	// StateBucket is the remote-state bucket to ensure.
	StateBucket string

	// Region is where a missing state bucket gets created.
	Region string

	// HostProject is the shared-VPC host. Empty means the platform
	// project hosts the VPC.
	HostProject string
}

// Orchestrator runs the bootstrap sequence against the control plane.
type Orchestrator struct {
	store    internal.StateStore
	identity internal.IdentityManager
	platform Platform
	logger   zerolog.Logger
}

// Option adjusts orchestrator construction.
type Option func(*Orchestrator)

// WithLogger substitutes the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New builds an orchestrator over the given control-plane interfaces.
func New(store internal.StateStore, identity internal.IdentityManager, platform Platform, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		identity: identity,
		platform: platform,
		logger:   log.With().Str("component", "bootstrap").Logger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the ensure steps in order (state store, deploy identity,
// network bridge) and returns the combined trust state. One broken
// permission must not hide the state of everything else, so later steps
// still run after a failure.
func (o *Orchestrator) Run(ctx context.Context, req Request) models.TrustState {
	state := models.TrustState{ProjectID: req.ProjectID}
	state.StateStore = o.EnsureStateStore(ctx, req)
	state.DeployIdentity = o.EnsureDeployIdentity(ctx, req)
	state.NetworkBridge = o.EnsureNetworkBridge(ctx, req)
	if !state.Ready() {
		o.logger.Warn().Strs("failed_steps", state.FailedSteps()).
			Str("project", req.ProjectID).Msg("bootstrap finished with failures")
	}
	return state
}

// EnsureStateStore probes the state bucket and creates it with versioning
// when missing. A pre-existing bucket is success, not a conflict.
func (o *Orchestrator) EnsureStateStore(ctx context.Context, req Request) models.StateStoreState {
	state := models.StateStoreState{Bucket: req.StateBucket}

	exists, err := o.store.BucketExists(ctx, req.StateBucket)
	if err != nil {
		state.Result = o.failed("state-store", req.StateBucket, req.ProjectID, "checking state bucket", err)
		return state
	}
	if exists {
		o.logger.Info().Str("bucket", req.StateBucket).Msg("state bucket already present")
		state.Result = models.EnsureResult{
			Outcome: models.OutcomeAlreadyPresent,
			Detail:  "bucket exists",
		}
		return state
	}

	if err := o.store.CreateBucket(ctx, req.ProjectID, req.StateBucket, req.Region); err != nil {
		if !gcperrors.IsAlreadyExists(err) {
			state.Result = o.failed("state-store", req.StateBucket, req.ProjectID, "creating state bucket", err)
			return state
		}
		// Lost a creation race; the bucket is there, keep going.
		o.logger.Debug().Str("bucket", req.StateBucket).Msg("bucket appeared during creation")
	}
	if err := o.store.EnableVersioning(ctx, req.StateBucket); err != nil {
		state.Result = o.failed("state-store", req.StateBucket, req.ProjectID, "enabling versioning", err)
		return state
	}
	state.Versioning = true
	state.Result = models.EnsureResult{
		Outcome: models.OutcomeCreated,
		Detail:  fmt.Sprintf("created in %s with versioning", req.Region),
	}
	return state
}

// EnsureDeployIdentity probes the deploy service account, creates it when
// missing, and always re-asserts its role grants and the impersonation
// bindings the build agents need.
func (o *Orchestrator) EnsureDeployIdentity(ctx context.Context, req Request) models.DeployIdentityState {
	email := DeployEmail(req.ProjectID)
	state := models.DeployIdentityState{Email: email}

	exists, err := o.identity.ServiceAccountExists(ctx, req.ProjectID, email)
	if err != nil {
		state.Result = o.failed("deploy-identity", email, req.ProjectID, "checking deploy account", err)
		return state
	}
	outcome := models.OutcomeAlreadyPresent
	if !exists {
		err := o.identity.CreateServiceAccount(ctx, req.ProjectID, DeployAccountID, deployDisplayName, deployDescription)
		switch {
		case err == nil:
			outcome = models.OutcomeCreated
		case gcperrors.IsAlreadyExists(err):
			o.logger.Debug().Str("account", email).Msg("deploy account appeared during creation")
		default:
			state.Result = o.failed("deploy-identity", email, req.ProjectID, "creating deploy account", err)
			return state
		}
	} else {
		o.logger.Info().Str("account", email).Msg("deploy account already present")
	}

	member := "serviceAccount:" + email
	if _, err := o.identity.GrantProjectRoles(ctx, req.ProjectID, member, deployProjectRoles...); err != nil {
		state.Result = o.failed("deploy-identity", email, req.ProjectID, "asserting deploy roles", err)
		return state
	}
	state.RolesAsserted = append([]string(nil), deployProjectRoles...)

	if err := o.assertImpersonation(ctx, req.ProjectID, email); err != nil {
		state.Result = o.failed("deploy-identity", email, req.ProjectID, "asserting impersonation bindings", err)
		return state
	}

	detail := "exists; roles re-asserted"
	if outcome == models.OutcomeCreated {
		detail = "created and granted deploy roles"
	}
	state.Result = models.EnsureResult{Outcome: outcome, Detail: detail}
	return state
}

// assertImpersonation wires the trust chain for cross-project deploys: the
// build agents need actAs on the deploy account to attach it to builds, and
// the platform agent additionally mints tokens for it. The registry API
// also gets actAs so it can validate the account during registration.
func (o *Orchestrator) assertImpersonation(ctx context.Context, projectID, email string) error {
	number, err := o.identity.ProjectNumber(ctx, projectID)
	if err != nil {
		return fmt.Errorf("resolving project number: %w", err)
	}
	clientAgent := fmt.Sprintf("serviceAccount:%s@%s", number, buildAgentDomain)
	platformAgent := fmt.Sprintf("serviceAccount:%s@%s", o.platform.Number, buildAgentDomain)
	registryAccount := fmt.Sprintf("serviceAccount:registry-api@%s.iam.gserviceaccount.com", o.platform.Project)

	users := []string{clientAgent, platformAgent, registryAccount}
	if _, err := o.identity.GrantServiceAccountRoles(ctx, projectID, email, roleServiceAccountUser, users...); err != nil {
		return fmt.Errorf("granting %s: %w", roleServiceAccountUser, err)
	}
	if _, err := o.identity.GrantServiceAccountRoles(ctx, projectID, email, roleTokenCreator, platformAgent); err != nil {
		return fmt.Errorf("granting %s: %w", roleTokenCreator, err)
	}
	if _, err := o.identity.GrantProjectRoles(ctx, projectID, registryAccount, roleServiceAccountUser); err != nil {
		return fmt.Errorf("granting project-level %s: %w", roleServiceAccountUser, err)
	}
	return nil
}

// EnsureNetworkBridge grants the client project's serverless service agent
// access to the shared VPC connectors in the host project. An existing
// grant is success.
func (o *Orchestrator) EnsureNetworkBridge(ctx context.Context, req Request) models.NetworkBridgeState {
	host := req.HostProject
	if host == "" {
		host = o.platform.Project
	}
	state := models.NetworkBridgeState{HostProject: host}

	number, err := o.identity.ProjectNumber(ctx, req.ProjectID)
	if err != nil {
		state.Result = o.failed("network-bridge", req.ProjectID, host, "resolving project number", err)
		return state
	}
	agent := fmt.Sprintf("service-%s@%s", number, serverlessAgentDomain)
	state.AgentEmail = agent

	changed, err := o.identity.GrantProjectRoles(ctx, host, "serviceAccount:"+agent, roleVPCAccessUser)
	if err != nil {
		if gcperrors.IsAlreadyExists(err) {
			state.Result = models.EnsureResult{
				Outcome: models.OutcomeAlreadyPresent,
				Detail:  "access already granted",
			}
			return state
		}
		state.Result = o.failed("network-bridge", agent, host, "granting VPC access", err)
		return state
	}
	if !changed {
		state.Result = models.EnsureResult{
			Outcome: models.OutcomeAlreadyPresent,
			Detail:  "access already granted",
		}
		return state
	}
	state.Result = models.EnsureResult{
		Outcome: models.OutcomeCreated,
		Detail:  fmt.Sprintf("granted %s on %s", roleVPCAccessUser, host),
	}
	return state
}

// failed classifies the cause, logs it, and builds the step result. The
// returned error chain keeps both the provisioning context and the
// classified cause reachable through errors.As.
func (o *Orchestrator) failed(step, resource, project, action string, err error) models.EnsureResult {
	classified := gcperrors.Classify(err)
	o.logger.Error().
		Str("step", step).
		Str("resource", resource).
		Str("kind", string(classified.Kind)).
		Err(err).
		Msg(action + " failed")
	return models.EnsureResult{
		Outcome: models.OutcomeFailed,
		Detail:  action + ": " + classified.Message,
		Error: &models.ProvisionError{
			Step:     step,
			Resource: resource,
			Project:  project,
			Cause:    classified,
		},
	}
}
