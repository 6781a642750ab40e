// internal/cloud/gcp/storage.go
// StateStore implementation over the JSON storage API.
package gcp

import (
	"context"

	"google.golang.org/api/storage/v1"

	"github.com/terraseed/terraseed/internal/gcperrors"
)

// BucketExists reports whether the bucket is visible to the caller. A
// NotFound answer is not an error; anything else (permission, transport)
// surfaces so callers can tell "absent" from "unknown".
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := c.storage.Buckets.Get(bucket).Context(ctx).Do()
	if err == nil {
		return true, nil
	}
	if gcperrors.IsNotFound(err) {
		return false, nil
	}
	return false, gcperrors.ClassifyResource(err, bucket)
}

// CreateBucket creates the bucket with uniform bucket-level access so state
// objects inherit bucket IAM instead of carrying per-object ACLs.
func (c *Client) CreateBucket(ctx context.Context, project, bucket, region string) error {
	spec := &storage.Bucket{
		Name:     bucket,
		Location: region,
		IamConfiguration: &storage.BucketIamConfiguration{
			UniformBucketLevelAccess: &storage.BucketIamConfigurationUniformBucketLevelAccess{
				Enabled: true,
			},
		},
	}
	if _, err := c.storage.Buckets.Insert(project, spec).Context(ctx).Do(); err != nil {
		return gcperrors.ClassifyResource(err, bucket)
	}
	c.logger.Info().Str("bucket", bucket).Str("location", region).Msg("state bucket created")
	return nil
}

// EnableVersioning turns on object versioning so earlier state generations
// survive overwrites.
func (c *Client) EnableVersioning(ctx context.Context, bucket string) error {
	patch := &storage.Bucket{
		Versioning: &storage.BucketVersioning{Enabled: true},
	}
	if _, err := c.storage.Buckets.Patch(bucket, patch).Context(ctx).Do(); err != nil {
		return gcperrors.ClassifyResource(err, bucket)
	}
	return nil
}
