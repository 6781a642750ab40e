// internal/models/trigger.go
package models

// DefaultCloudBuildFile is the pipeline definition path triggers point at
// when an environment does not override it.
const DefaultCloudBuildFile = "cicd/cloudbuild.yaml"

// TriggerEnvironment describes one deployment environment a build trigger
// should exist for. Exactly one of BranchPattern or TagPattern must be set.
type TriggerEnvironment struct {
	Name            string `json:"name"`
	BranchPattern   string `json:"branch_pattern,omitempty"`
	TagPattern      string `json:"tag_pattern,omitempty"`
	RequireApproval bool   `json:"require_approval"`
	CloudBuildFile  string `json:"cloudbuild_file,omitempty"`
}

// Validate checks the branch/tag exclusivity rule.
func (e TriggerEnvironment) Validate() error {
	if e.Name == "" {
		return &TriggerConfigError{Reason: "environment name is empty"}
	}
	if e.BranchPattern == "" && e.TagPattern == "" {
		return &TriggerConfigError{Environment: e.Name, Reason: "either branch_pattern or tag_pattern must be set"}
	}
	if e.BranchPattern != "" && e.TagPattern != "" {
		return &TriggerConfigError{Environment: e.Name, Reason: "branch_pattern and tag_pattern are mutually exclusive"}
	}
	return nil
}

// BuildFile returns the pipeline file for the environment, defaulted.
func (e TriggerEnvironment) BuildFile() string {
	if e.CloudBuildFile != "" {
		return e.CloudBuildFile
	}
	return DefaultCloudBuildFile
}

// Trigger provisioning status values.
const (
	TriggerStatusCreated    = "created"
	TriggerStatusExisting   = "already_exists"
	TriggerStatusUnverified = "already_exists_unverified"
	TriggerStatusFailed     = "failed"
)

// TriggerRecord is the per-environment outcome of trigger provisioning.
type TriggerRecord struct {
	Environment string `json:"environment"`
	TriggerID   string `json:"trigger_id,omitempty"`
	TriggerName string `json:"trigger_name"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
}

// TriggerResult aggregates the outcomes of one provisioning run.
type TriggerResult struct {
	Created []TriggerRecord `json:"created"`
	Failed  []TriggerRecord `json:"failed"`
}

// Ok reports whether every environment ended in a usable trigger.
func (r *TriggerResult) Ok() bool {
	return r != nil && len(r.Failed) == 0
}
