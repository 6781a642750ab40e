// internal/cloud/gcp/identity.go
// IdentityManager implementation: service accounts, IAM policy bindings and
// impersonation probes. Policy writes use read-modify-write with a short
// retry loop because concurrent writers invalidate the policy etag.
package gcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/juju/retry"
	"google.golang.org/api/cloudresourcemanager/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iam/v1"
	"google.golang.org/api/iamcredentials/v1"

	"github.com/terraseed/terraseed/internal/gcperrors"
)

const (
	policyRetryAttempts = 4
	policyRetryDelay    = 500 * time.Millisecond

	// Probe tokens are discarded immediately, so ask for the minimum
	// lifetime the API accepts.
	probeTokenLifetime = "300s"
)

func serviceAccountResource(project, email string) string {
	return fmt.Sprintf("projects/%s/serviceAccounts/%s", project, email)
}

// ServiceAccountExists reports whether the service account is present.
func (c *Client) ServiceAccountExists(ctx context.Context, project, email string) (bool, error) {
	_, err := c.iam.Projects.ServiceAccounts.Get(serviceAccountResource(project, email)).Context(ctx).Do()
	if err == nil {
		return true, nil
	}
	if gcperrors.IsNotFound(err) {
		return false, nil
	}
	return false, gcperrors.ClassifyResource(err, email)
}

// CreateServiceAccount creates a service account in the project.
func (c *Client) CreateServiceAccount(ctx context.Context, project, accountID, displayName, description string) error {
	req := &iam.CreateServiceAccountRequest{
		AccountId: accountID,
		ServiceAccount: &iam.ServiceAccount{
			DisplayName: displayName,
			Description: description,
		},
	}
	email := fmt.Sprintf("%s@%s.iam.gserviceaccount.com", accountID, project)
	if _, err := c.iam.Projects.ServiceAccounts.Create("projects/"+project, req).Context(ctx).Do(); err != nil {
		return gcperrors.ClassifyResource(err, email)
	}
	c.logger.Info().Str("account", email).Msg("service account created")
	return nil
}

// GrantProjectRoles adds the member to each role binding on the project
// policy. Members already present are left alone, so repeating the grant is
// a read followed by no write. Returns whether the policy changed.
func (c *Client) GrantProjectRoles(ctx context.Context, project, member string, roles ...string) (bool, error) {
	changed := false
	update := func() error {
		policy, err := c.projects.Projects.GetIamPolicy(project, &cloudresourcemanager.GetIamPolicyRequest{}).Context(ctx).Do()
		if err != nil {
			return err
		}
		changed = false
		for _, role := range roles {
			if addProjectMember(policy, role, member) {
				changed = true
			}
		}
		if !changed {
			return nil
		}
		_, err = c.projects.Projects.SetIamPolicy(project, &cloudresourcemanager.SetIamPolicyRequest{Policy: policy}).Context(ctx).Do()
		return err
	}
	if err := c.retryPolicyWrite(update, "project "+project); err != nil {
		return false, gcperrors.ClassifyResource(err, project)
	}
	return changed, nil
}

// GrantServiceAccountRoles ensures each member holds the role on the
// service account resource itself. Returns whether the policy changed.
func (c *Client) GrantServiceAccountRoles(ctx context.Context, project, email, role string, members ...string) (bool, error) {
	resource := serviceAccountResource(project, email)
	changed := false
	update := func() error {
		policy, err := c.iam.Projects.ServiceAccounts.GetIamPolicy(resource).Context(ctx).Do()
		if err != nil {
			return err
		}
		changed = false
		for _, member := range members {
			if addAccountMember(policy, role, member) {
				changed = true
			}
		}
		if !changed {
			return nil
		}
		_, err = c.iam.Projects.ServiceAccounts.SetIamPolicy(resource, &iam.SetIamPolicyRequest{Policy: policy}).Context(ctx).Do()
		return err
	}
	if err := c.retryPolicyWrite(update, "account "+email); err != nil {
		return false, gcperrors.ClassifyResource(err, email)
	}
	return changed, nil
}

// ProjectNumber resolves the numeric identifier of a project.
func (c *Client) ProjectNumber(ctx context.Context, project string) (string, error) {
	p, err := c.projects.Projects.Get(project).Context(ctx).Do()
	if err != nil {
		return "", gcperrors.ClassifyResource(err, project)
	}
	return strconv.FormatInt(p.ProjectNumber, 10), nil
}

// MintAccessToken asks the credentials API for a short-lived token as the
// service account. Success proves the caller can impersonate it; the token
// itself is discarded.
func (c *Client) MintAccessToken(ctx context.Context, email string) error {
	req := &iamcredentials.GenerateAccessTokenRequest{
		Scope:    []string{cloudPlatformScope},
		Lifetime: probeTokenLifetime,
	}
	name := "projects/-/serviceAccounts/" + email
	if _, err := c.shortterm.Projects.ServiceAccounts.GenerateAccessToken(name, req).Context(ctx).Do(); err != nil {
		return gcperrors.ClassifyResource(err, email)
	}
	return nil
}

// TestServiceAccountPermissions returns the subset of permissions the
// caller holds on the service account resource.
func (c *Client) TestServiceAccountPermissions(ctx context.Context, project, email string, permissions []string) ([]string, error) {
	resource := serviceAccountResource(project, email)
	req := &iam.TestIamPermissionsRequest{Permissions: permissions}
	resp, err := c.iam.Projects.ServiceAccounts.TestIamPermissions(resource, req).Context(ctx).Do()
	if err != nil {
		return nil, gcperrors.ClassifyResource(err, email)
	}
	return resp.Permissions, nil
}

// retryPolicyWrite runs a read-modify-write policy update, retrying etag
// conflicts caused by concurrent policy writers.
func (c *Client) retryPolicyWrite(update func() error, target string) error {
	err := retry.Call(retry.CallArgs{
		Func: update,
		IsFatalError: func(err error) bool {
			return !policyConflict(err)
		},
		NotifyFunc: func(err error, attempt int) {
			c.logger.Debug().Int("attempt", attempt).Err(err).Msg("retrying policy update for " + target)
		},
		Attempts: policyRetryAttempts,
		Delay:    policyRetryDelay,
		Clock:    c.clock,
	})
	if retry.IsAttemptsExceeded(err) {
		err = retry.LastError(err)
	}
	return err
}

// policyConflict reports whether the error is an etag conflict from a
// concurrent policy write.
func policyConflict(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusConflict || apiErr.Code == http.StatusPreconditionFailed
	}
	return false
}

// addProjectMember adds the member to the role binding on a project policy,
// creating the binding when absent. Returns false when already present.
func addProjectMember(policy *cloudresourcemanager.Policy, role, member string) bool {
	for _, b := range policy.Bindings {
		if b.Role != role {
			continue
		}
		for _, m := range b.Members {
			if m == member {
				return false
			}
		}
		b.Members = append(b.Members, member)
		return true
	}
	policy.Bindings = append(policy.Bindings, &cloudresourcemanager.Binding{
		Role:    role,
		Members: []string{member},
	})
	return true
}

// addAccountMember is addProjectMember for service-account level policies,
// which use the iam API's policy types.
func addAccountMember(policy *iam.Policy, role, member string) bool {
	for _, b := range policy.Bindings {
		if b.Role != role {
			continue
		}
		for _, m := range b.Members {
			if m == member {
				return false
			}
		}
		b.Members = append(b.Members, member)
		return true
	}
	policy.Bindings = append(policy.Bindings, &iam.Binding{
		Role:    role,
		Members: []string{member},
	})
	return true
}
