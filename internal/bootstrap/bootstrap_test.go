package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"

	"github.com/terraseed/terraseed/internal/gcperrors"
	"github.com/terraseed/terraseed/internal/models"
)

// fakeControlPlane implements the state-store and identity interfaces with
// in-memory maps so the orchestrator can be exercised without a project.
type fakeControlPlane struct {
	buckets   map[string]bool
	versioned map[string]bool
	accounts  map[string]bool
	members   map[string]map[string]bool
	numbers   map[string]string

	bucketProbeErr  error
	createBucketErr error
	versioningErr   error
	accountProbeErr error
	grantErr        error

	createdBuckets  []string
	createdAccounts []string
}

func newFake() *fakeControlPlane {
	return &fakeControlPlane{
		buckets:   map[string]bool{},
		versioned: map[string]bool{},
		accounts:  map[string]bool{},
		members:   map[string]map[string]bool{},
		numbers:   map[string]string{"acme-shop-prod": "111111111111"},
	}
}

func (f *fakeControlPlane) BucketExists(_ context.Context, bucket string) (bool, error) {
	if f.bucketProbeErr != nil {
		return false, f.bucketProbeErr
	}
	return f.buckets[bucket], nil
}

func (f *fakeControlPlane) CreateBucket(_ context.Context, project, bucket, region string) error {
	if f.createBucketErr != nil {
		return f.createBucketErr
	}
	f.buckets[bucket] = true
	f.createdBuckets = append(f.createdBuckets, bucket)
	return nil
}

func (f *fakeControlPlane) EnableVersioning(_ context.Context, bucket string) error {
	if f.versioningErr != nil {
		return f.versioningErr
	}
	f.versioned[bucket] = true
	return nil
}

func (f *fakeControlPlane) ServiceAccountExists(_ context.Context, project, email string) (bool, error) {
	if f.accountProbeErr != nil {
		return false, f.accountProbeErr
	}
	return f.accounts[project+"/"+email], nil
}

func (f *fakeControlPlane) CreateServiceAccount(_ context.Context, project, accountID, _, _ string) error {
	email := accountID + "@" + project + ".iam.gserviceaccount.com"
	f.accounts[project+"/"+email] = true
	f.createdAccounts = append(f.createdAccounts, email)
	return nil
}

func (f *fakeControlPlane) grant(key, member string) bool {
	set, ok := f.members[key]
	if !ok {
		set = map[string]bool{}
		f.members[key] = set
	}
	if set[member] {
		return false
	}
	set[member] = true
	return true
}

func (f *fakeControlPlane) hasMember(key, member string) bool {
	return f.members[key][member]
}

func (f *fakeControlPlane) GrantProjectRoles(_ context.Context, project, member string, roles ...string) (bool, error) {
	if f.grantErr != nil {
		return false, f.grantErr
	}
	changed := false
	for _, role := range roles {
		if f.grant("project:"+project+":"+role, member) {
			changed = true
		}
	}
	return changed, nil
}

func (f *fakeControlPlane) GrantServiceAccountRoles(_ context.Context, _, email, role string, members ...string) (bool, error) {
	if f.grantErr != nil {
		return false, f.grantErr
	}
	changed := false
	for _, member := range members {
		if f.grant("account:"+email+":"+role, member) {
			changed = true
		}
	}
	return changed, nil
}

func (f *fakeControlPlane) ProjectNumber(_ context.Context, project string) (string, error) {
	number, ok := f.numbers[project]
	if !ok {
		return "", gcperrors.Classify(&googleapi.Error{Code: http.StatusNotFound, Message: "project not found"})
	}
	return number, nil
}

func (f *fakeControlPlane) MintAccessToken(context.Context, string) error { return nil }

func (f *fakeControlPlane) TestServiceAccountPermissions(_ context.Context, _, _ string, permissions []string) ([]string, error) {
	return permissions, nil
}

func newOrchestrator(f *fakeControlPlane) *Orchestrator {
	platform := Platform{Project: "terraseed-platform-prod", Number: "999999999999"}
	return New(f, f, platform, WithLogger(zerolog.Nop()))
}

func testRequest() Request {
	return Request{
		ProjectID:   "acme-shop-prod",
		StateBucket: "acme-terraform-state",
		Region:      "europe-north2",
	}
}

func TestRunProvisionsEverything(t *testing.T) {
	fake := newFake()
	state := newOrchestrator(fake).Run(context.Background(), testRequest())

	if !state.Ready() {
		t.Fatalf("expected ready trust state, failed steps: %v", state.FailedSteps())
	}
	if state.StateStore.Result.Outcome != models.OutcomeCreated {
		t.Errorf("state store outcome = %q, want created", state.StateStore.Result.Outcome)
	}
	if !state.StateStore.Versioning || !fake.versioned["acme-terraform-state"] {
		t.Error("versioning should be enabled on the new bucket")
	}
	if state.DeployIdentity.Result.Outcome != models.OutcomeCreated {
		t.Errorf("deploy identity outcome = %q, want created", state.DeployIdentity.Result.Outcome)
	}
	if state.DeployIdentity.Email != "deployer@acme-shop-prod.iam.gserviceaccount.com" {
		t.Errorf("unexpected deploy email %q", state.DeployIdentity.Email)
	}
	if len(state.DeployIdentity.RolesAsserted) != len(deployProjectRoles) {
		t.Errorf("RolesAsserted = %v, want %v", state.DeployIdentity.RolesAsserted, deployProjectRoles)
	}

	deployMember := "serviceAccount:deployer@acme-shop-prod.iam.gserviceaccount.com"
	for _, role := range deployProjectRoles {
		if !fake.hasMember("project:acme-shop-prod:"+role, deployMember) {
			t.Errorf("deploy account missing project role %s", role)
		}
	}

	userKey := "account:deployer@acme-shop-prod.iam.gserviceaccount.com:" + roleServiceAccountUser
	for _, member := range []string{
		"serviceAccount:111111111111@cloudbuild.gserviceaccount.com",
		"serviceAccount:999999999999@cloudbuild.gserviceaccount.com",
		"serviceAccount:registry-api@terraseed-platform-prod.iam.gserviceaccount.com",
	} {
		if !fake.hasMember(userKey, member) {
			t.Errorf("missing serviceAccountUser binding for %s", member)
		}
	}
	tokenKey := "account:deployer@acme-shop-prod.iam.gserviceaccount.com:" + roleTokenCreator
	if !fake.hasMember(tokenKey, "serviceAccount:999999999999@cloudbuild.gserviceaccount.com") {
		t.Error("platform build agent missing tokenCreator binding")
	}

	if state.NetworkBridge.Result.Outcome != models.OutcomeCreated {
		t.Errorf("network bridge outcome = %q, want created", state.NetworkBridge.Result.Outcome)
	}
	if state.NetworkBridge.AgentEmail != "service-111111111111@serverless-robot-prod.iam.gserviceaccount.com" {
		t.Errorf("unexpected serverless agent %q", state.NetworkBridge.AgentEmail)
	}
	if !fake.hasMember("project:terraseed-platform-prod:"+roleVPCAccessUser, "serviceAccount:"+state.NetworkBridge.AgentEmail) {
		t.Error("serverless agent missing VPC access in host project")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	fake := newFake()
	orch := newOrchestrator(fake)

	first := orch.Run(context.Background(), testRequest())
	if !first.Ready() {
		t.Fatalf("first run failed: %v", first.FailedSteps())
	}

	second := orch.Run(context.Background(), testRequest())
	if !second.Ready() {
		t.Fatalf("second run failed: %v", second.FailedSteps())
	}
	if second.StateStore.Result.Outcome != models.OutcomeAlreadyPresent {
		t.Errorf("second state store outcome = %q, want already_present", second.StateStore.Result.Outcome)
	}
	if second.DeployIdentity.Result.Outcome != models.OutcomeAlreadyPresent {
		t.Errorf("second deploy identity outcome = %q, want already_present", second.DeployIdentity.Result.Outcome)
	}
	if second.NetworkBridge.Result.Outcome != models.OutcomeAlreadyPresent {
		t.Errorf("second network bridge outcome = %q, want already_present", second.NetworkBridge.Result.Outcome)
	}
	if len(fake.createdBuckets) != 1 || len(fake.createdAccounts) != 1 {
		t.Errorf("resources created more than once: buckets=%v accounts=%v", fake.createdBuckets, fake.createdAccounts)
	}
}

func TestIdentityFailureDoesNotAbortLaterSteps(t *testing.T) {
	fake := newFake()
	fake.accountProbeErr = &googleapi.Error{Code: http.StatusForbidden, Message: "iam.serviceAccounts.get denied"}

	state := newOrchestrator(fake).Run(context.Background(), testRequest())

	if !state.StateStore.Result.Ready() {
		t.Error("state store should succeed despite identity failure")
	}
	if state.DeployIdentity.Result.Outcome != models.OutcomeFailed {
		t.Fatalf("deploy identity outcome = %q, want failed", state.DeployIdentity.Result.Outcome)
	}
	var classified *gcperrors.ClassifiedError
	if !errors.As(state.DeployIdentity.Result.Error, &classified) {
		t.Fatalf("step error should carry a classified cause, got %T", state.DeployIdentity.Result.Error)
	}
	if classified.Kind != gcperrors.PermissionDenied {
		t.Errorf("classified kind = %q, want PermissionDenied", classified.Kind)
	}
	if !state.NetworkBridge.Result.Ready() {
		t.Error("network bridge should succeed despite identity failure")
	}
	failed := state.FailedSteps()
	if len(failed) != 1 || failed[0] != "deploy-identity" {
		t.Errorf("FailedSteps() = %v, want [deploy-identity]", failed)
	}
}

func TestVersioningFailureFailsStateStore(t *testing.T) {
	fake := newFake()
	fake.versioningErr = errors.New("patch refused")

	state := newOrchestrator(fake).Run(context.Background(), testRequest())

	if state.StateStore.Result.Outcome != models.OutcomeFailed {
		t.Fatalf("state store outcome = %q, want failed", state.StateStore.Result.Outcome)
	}
	if !strings.Contains(state.StateStore.Result.Detail, "enabling versioning") {
		t.Errorf("detail %q should name the failed action", state.StateStore.Result.Detail)
	}
	if !state.DeployIdentity.Result.Ready() || !state.NetworkBridge.Result.Ready() {
		t.Error("later steps should still run after a state store failure")
	}
}

func TestNetworkBridgeExistingGrant(t *testing.T) {
	fake := newFake()
	fake.grant("project:terraseed-platform-prod:"+roleVPCAccessUser,
		"serviceAccount:service-111111111111@serverless-robot-prod.iam.gserviceaccount.com")

	state := newOrchestrator(fake).EnsureNetworkBridge(context.Background(), testRequest())

	if state.Result.Outcome != models.OutcomeAlreadyPresent {
		t.Errorf("outcome = %q, want already_present", state.Result.Outcome)
	}
}

func TestNetworkBridgeHostOverride(t *testing.T) {
	fake := newFake()
	req := testRequest()
	req.HostProject = "acme-network-host"

	state := newOrchestrator(fake).EnsureNetworkBridge(context.Background(), req)

	if state.HostProject != "acme-network-host" {
		t.Errorf("host project = %q, want override", state.HostProject)
	}
	if !fake.hasMember("project:acme-network-host:"+roleVPCAccessUser, "serviceAccount:"+state.AgentEmail) {
		t.Error("grant should target the override host project")
	}
}

func TestDeployEmail(t *testing.T) {
	if got, want := DeployEmail("acme-shop-prod"), "deployer@acme-shop-prod.iam.gserviceaccount.com"; got != want {
		t.Errorf("DeployEmail() = %q, want %q", got, want)
	}
}
