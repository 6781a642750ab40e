// internal/models/trust.go
package models

// StepOutcome is the terminal state of one idempotent bootstrap step.
type StepOutcome string

const (
	OutcomeCreated        StepOutcome = "created"
	OutcomeAlreadyPresent StepOutcome = "already_present"
	OutcomeFailed         StepOutcome = "failed"
)

// EnsureResult records how one bootstrap step ended. Error is non-nil only
// when Outcome is OutcomeFailed.
type EnsureResult struct {
	Outcome EnsureOutcome `json:"outcome"`
	Detail  string        `json:"detail,omitempty"`
	Error   error         `json:"-"`
}

// EnsureOutcome aliases StepOutcome for readability at call sites.
type EnsureOutcome = StepOutcome

// Ready reports whether the step left its resource usable.
func (r EnsureResult) Ready() bool {
	return r.Outcome == OutcomeCreated || r.Outcome == OutcomeAlreadyPresent
}

// StateStoreState describes the Terraform state bucket after bootstrap.
type StateStoreState struct {
	Bucket     string       `json:"bucket"`
	Versioning bool         `json:"versioning"`
	Result     EnsureResult `json:"result"`
}

// DeployIdentityState describes the deployment service account after
// bootstrap, including whether its role grants were (re-)asserted.
type DeployIdentityState struct {
	Email         string       `json:"email"`
	RolesAsserted []string     `json:"roles_asserted,omitempty"`
	Result        EnsureResult `json:"result"`
}

// NetworkBridgeState describes the shared-VPC access grant after bootstrap.
type NetworkBridgeState struct {
	HostProject string       `json:"host_project"`
	AgentEmail  string       `json:"agent_email"`
	Result      EnsureResult `json:"result"`
}

// TrustState is the full outcome of the bootstrap sequence. Steps always run
// in order state store, deploy identity, network bridge; a failed step does
// not stop the ones after it.
type TrustState struct {
	ProjectID      string              `json:"project_id"`
	StateStore     StateStoreState     `json:"state_store"`
	DeployIdentity DeployIdentityState `json:"deploy_identity"`
	NetworkBridge  NetworkBridgeState  `json:"network_bridge"`
}

// Ready reports whether every step left its resource usable.
func (t TrustState) Ready() bool {
	return t.StateStore.Result.Ready() &&
		t.DeployIdentity.Result.Ready() &&
		t.NetworkBridge.Result.Ready()
}

// FailedSteps names the steps that ended in failure, in run order.
func (t TrustState) FailedSteps() []string {
	var out []string
	if t.StateStore.Result.Outcome == OutcomeFailed {
		out = append(out, "state-store")
	}
	if t.DeployIdentity.Result.Outcome == OutcomeFailed {
		out = append(out, "deploy-identity")
	}
	if t.NetworkBridge.Result.Outcome == OutcomeFailed {
		out = append(out, "network-bridge")
	}
	return out
}
