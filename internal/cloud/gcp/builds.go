// internal/cloud/gcp/builds.go
// BuildAdmin implementation: second-gen repository connections plus the
// regional trigger surface of the build API.
package gcp

import (
	"context"
	"fmt"
	"strings"

	cloudbuild "google.golang.org/api/cloudbuild/v1"

	"github.com/terraseed/terraseed/internal"
	"github.com/terraseed/terraseed/internal/gcperrors"
)

func locationResource(project, region string) string {
	return fmt.Sprintf("projects/%s/locations/%s", project, region)
}

// connectionResource accepts either a bare connection name or a full
// resource path and returns the full path.
func connectionResource(project, region, connection string) string {
	if strings.HasPrefix(connection, "projects/") {
		return connection
	}
	return fmt.Sprintf("%s/connections/%s", locationResource(project, region), connection)
}

// ListConnections lists the source-control connections in a project region.
func (c *Client) ListConnections(ctx context.Context, project, region string) ([]internal.Connection, error) {
	parent := locationResource(project, region)
	var out []internal.Connection
	pageToken := ""
	for {
		call := c.repos.Projects.Locations.Connections.List(parent).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, gcperrors.ClassifyResource(err, parent)
		}
		for _, conn := range resp.Connections {
			out = append(out, internal.Connection{
				Name:     conn.Name,
				Disabled: conn.Disabled,
			})
		}
		if resp.NextPageToken == "" {
			return out, nil
		}
		pageToken = resp.NextPageToken
	}
}

// ListRepositories lists the repositories linked to a connection.
func (c *Client) ListRepositories(ctx context.Context, project, region, connection string) ([]internal.Repository, error) {
	parent := connectionResource(project, region, connection)
	var out []internal.Repository
	pageToken := ""
	for {
		call := c.repos.Projects.Locations.Connections.Repositories.List(parent).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, gcperrors.ClassifyResource(err, parent)
		}
		for _, repo := range resp.Repositories {
			out = append(out, internal.Repository{
				Name:      repo.Name,
				RemoteURI: repo.RemoteUri,
			})
		}
		if resp.NextPageToken == "" {
			return out, nil
		}
		pageToken = resp.NextPageToken
	}
}

// CreateTrigger creates a regional build trigger against a second-gen
// repository. Exactly one of branch and tag pattern is set on the push
// filter; the caller validates exclusivity.
func (c *Client) CreateTrigger(ctx context.Context, project, region string, spec internal.TriggerSpec) (*internal.TriggerInfo, error) {
	push := &cloudbuild.PushFilter{}
	if spec.BranchPattern != "" {
		push.Branch = spec.BranchPattern
	} else {
		push.Tag = spec.TagPattern
	}
	trigger := &cloudbuild.BuildTrigger{
		Name:        spec.Name,
		Description: spec.Description,
		Filename:    spec.BuildFile,
		RepositoryEventConfig: &cloudbuild.RepositoryEventConfig{
			Repository: spec.Repository,
			Push:       push,
		},
		ServiceAccount: spec.ServiceAccount,
		Substitutions:  spec.Substitutions,
	}
	if spec.RequireApproval {
		trigger.ApprovalConfig = &cloudbuild.ApprovalConfig{ApprovalRequired: true}
	}
	created, err := c.builds.Projects.Locations.Triggers.Create(locationResource(project, region), trigger).Context(ctx).Do()
	if err != nil {
		return nil, gcperrors.ClassifyResource(err, spec.Name)
	}
	return &internal.TriggerInfo{ID: created.Id, Name: created.Name}, nil
}

// ListTriggers lists the build triggers in a project region.
func (c *Client) ListTriggers(ctx context.Context, project, region string) ([]internal.TriggerInfo, error) {
	parent := locationResource(project, region)
	var out []internal.TriggerInfo
	pageToken := ""
	for {
		call := c.builds.Projects.Locations.Triggers.List(parent).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, gcperrors.ClassifyResource(err, parent)
		}
		for _, t := range resp.Triggers {
			out = append(out, internal.TriggerInfo{ID: t.Id, Name: t.Name})
		}
		if resp.NextPageToken == "" {
			return out, nil
		}
		pageToken = resp.NextPageToken
	}
}
