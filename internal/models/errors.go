package models

import "fmt"

// SelectionError reports an invalid resource selection entry
type SelectionError struct {
	Kind   ResourceKind
	Name   string
	Reason string
}

func (e *SelectionError) Error() string {
	if e.Name != "" && e.Kind != "" {
		return fmt.Sprintf("invalid selection entry %s/%s: %s", e.Kind, e.Name, e.Reason)
	}
	if e.Name != "" {
		return fmt.Sprintf("invalid selection entry '%s': %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("invalid selection entry: %s", e.Reason)
}

// TriggerConfigError reports an invalid trigger environment definition.
// Trigger provisioning refuses the whole run when any environment fails
// validation, so this error surfaces before any API call is made.
type TriggerConfigError struct {
	Environment string
	Reason      string
}

func (e *TriggerConfigError) Error() string {
	if e.Environment != "" {
		return fmt.Sprintf("invalid trigger environment '%s': %s", e.Environment, e.Reason)
	}
	return fmt.Sprintf("invalid trigger environment: %s", e.Reason)
}

// ProvisionError represents a failed control-plane operation
type ProvisionError struct {
	Step     string // "state-store", "deploy-identity", "network-bridge", "trigger"
	Resource string // bucket name, account email, trigger name, ...
	Project  string
	Cause    error
}

func (e *ProvisionError) Error() string {
	if e.Project != "" {
		return fmt.Sprintf("%s provisioning failed for '%s' in project %s: %v",
			e.Step, e.Resource, e.Project, e.Cause)
	}
	return fmt.Sprintf("%s provisioning failed for '%s': %v", e.Step, e.Resource, e.Cause)
}

func (e *ProvisionError) Unwrap() error {
	return e.Cause
}

// ComposeError represents a failure while composing Terraform artifacts
type ComposeError struct {
	Role       string // "compute", "identity", "outputs", ...
	Identifier string
	Reason     string
	Cause      error
}

func (e *ComposeError) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("failed to compose %s artifact for '%s': %s", e.Role, e.Identifier, e.Reason)
	}
	return fmt.Sprintf("failed to compose %s artifact: %s", e.Role, e.Reason)
}

func (e *ComposeError) Unwrap() error {
	return e.Cause
}

// ConfigError represents a missing or invalid platform configuration value
type ConfigError struct {
	Field  string // environment variable or flag name
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error (%s): %s", e.Field, e.Reason)
}

// RegistryError represents a failed call to the platform registry API
type RegistryError struct {
	Operation  string // "register-client", "register-project", "platform-config"
	StatusCode int
	Cause      error
}

func (e *RegistryError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("registry %s failed (status %d): %v", e.Operation, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("registry %s failed: %v", e.Operation, e.Cause)
}

func (e *RegistryError) Unwrap() error {
	return e.Cause
}

// DiscoveryError represents a failed resource discovery probe
type DiscoveryError struct {
	Family  string // "run-services", "sql-instances", "buckets", ...
	Project string
	Cause   error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery of %s in project '%s' failed: %v", e.Family, e.Project, e.Cause)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Cause
}
