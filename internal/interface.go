// Package internal defines the control-plane interfaces the rest of
// terraseed builds against. Implementations handle provider specifics (the
// GCP REST clients live in internal/cloud/gcp); the orchestrators accept
// these interfaces so tests can substitute fakes.
package internal

import "context"

// StateStore manages the bucket that backs Terraform remote state.
type StateStore interface {
	// BucketExists reports whether the named bucket is reachable.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// CreateBucket creates the bucket in the project with uniform
	// bucket-level access enabled.
	CreateBucket(ctx context.Context, project, bucket, region string) error

	// EnableVersioning turns on object versioning for the bucket.
	EnableVersioning(ctx context.Context, bucket string) error
}

// IdentityManager manages service accounts and IAM policy bindings.
type IdentityManager interface {
	// ServiceAccountExists reports whether the service account is present
	// in the project.
	ServiceAccountExists(ctx context.Context, project, email string) (bool, error)

	// CreateServiceAccount creates a service account in the project.
	CreateServiceAccount(ctx context.Context, project, accountID, displayName, description string) error

	// GrantProjectRoles ensures the member holds each role on the project.
	// Members already present in a binding are left alone, so the grants
	// are safe to repeat every run. Returns whether the policy changed.
	GrantProjectRoles(ctx context.Context, project, member string, roles ...string) (bool, error)

	// GrantServiceAccountRoles ensures each member holds the role on the
	// service account resource itself. Returns whether the policy changed.
	GrantServiceAccountRoles(ctx context.Context, project, email, role string, members ...string) (bool, error)

	// ProjectNumber resolves the numeric identifier of a project.
	ProjectNumber(ctx context.Context, project string) (string, error)

	// MintAccessToken attempts to impersonate the service account and mint
	// a short-lived access token. Used to probe cross-project trust before
	// creating build triggers.
	MintAccessToken(ctx context.Context, email string) error

	// TestServiceAccountPermissions returns the subset of permissions the
	// caller holds on the service account resource.
	TestServiceAccountPermissions(ctx context.Context, project, email string, permissions []string) ([]string, error)
}

// Connection is a source-control connection in the build service.
type Connection struct {
	// Name is the full resource name of the connection.
	Name string

	// Disabled reports whether the connection is administratively off.
	Disabled bool
}

// Repository is a source repository linked to a build connection.
type Repository struct {
	// Name is the full resource name of the linked repository.
	Name string

	// RemoteURI is the clone URL of the upstream repository.
	RemoteURI string
}

// TriggerSpec describes a build trigger to create. Exactly one of
// BranchPattern and TagPattern must be set.
type TriggerSpec struct {
	Name            string
	Description     string
	Repository      string
	BranchPattern   string
	TagPattern      string
	BuildFile       string
	ServiceAccount  string
	Substitutions   map[string]string
	RequireApproval bool
}

// TriggerInfo identifies an existing build trigger.
type TriggerInfo struct {
	ID   string
	Name string
}

// BuildAdmin manages build triggers and their linked repositories.
type BuildAdmin interface {
	// ListConnections lists the source-control connections in a project
	// region.
	ListConnections(ctx context.Context, project, region string) ([]Connection, error)

	// ListRepositories lists the repositories linked to a connection.
	ListRepositories(ctx context.Context, project, region, connection string) ([]Repository, error)

	// CreateTrigger creates a build trigger and returns its identity.
	CreateTrigger(ctx context.Context, project, region string, spec TriggerSpec) (*TriggerInfo, error)

	// ListTriggers lists the build triggers in a project region.
	ListTriggers(ctx context.Context, project, region string) ([]TriggerInfo, error)
}
