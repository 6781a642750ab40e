package models

import (
	"errors"
	"testing"
)

func TestSelectionRejectsDuplicates(t *testing.T) {
	sel, err := NewResourceSelection(
		ResourceDescriptor{Kind: KindComputeService, Name: "api", Mode: ModeCreate},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = sel.Add(ResourceDescriptor{Kind: KindComputeService, Name: "api", Mode: ModeAdoptExisting})
	var selErr *SelectionError
	if !errors.As(err, &selErr) {
		t.Fatalf("expected SelectionError for duplicate; got %v", err)
	}
	if sel.Len() != 1 {
		t.Errorf("duplicate should not be stored; len = %d", sel.Len())
	}
}

func TestSelectionAllowsSameNameAcrossKinds(t *testing.T) {
	sel, err := NewResourceSelection(
		ResourceDescriptor{Kind: KindComputeService, Name: "shop", Mode: ModeCreate},
		ResourceDescriptor{Kind: KindObjectStore, Name: "shop", Mode: ModeCreate},
	)
	if err != nil {
		t.Fatalf("same name in different kinds should be allowed: %v", err)
	}
	if sel.Len() != 2 {
		t.Errorf("expected 2 descriptors; got %d", sel.Len())
	}
}

func TestSelectionPreservesInsertionOrder(t *testing.T) {
	sel, _ := NewResourceSelection(
		ResourceDescriptor{Kind: KindComputeService, Name: "b", Mode: ModeCreate},
		ResourceDescriptor{Kind: KindComputeService, Name: "a", Mode: ModeCreate},
		ResourceDescriptor{Kind: KindSecret, Name: "token", Mode: ModeCreate},
		ResourceDescriptor{Kind: KindComputeService, Name: "c", Mode: ModeCreate},
	)
	got := sel.ByKind(KindComputeService)
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d services; got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d: got %s; want %s", i, got[i].Name, name)
		}
	}
}

func TestSelectionAdopted(t *testing.T) {
	sel, _ := NewResourceSelection(
		ResourceDescriptor{Kind: KindComputeService, Name: "api", Mode: ModeAdoptExisting},
		ResourceDescriptor{Kind: KindObjectStore, Name: "media", Mode: ModeCreate},
		ResourceDescriptor{Kind: KindSecret, Name: "dsn", Mode: ModeAdoptExisting},
	)
	adopted := sel.Adopted()
	if len(adopted) != 2 {
		t.Fatalf("expected 2 adopted; got %d", len(adopted))
	}
	if adopted[0].Name != "api" || adopted[1].Name != "dsn" {
		t.Errorf("adopted order wrong: %v", adopted)
	}
}

func TestSelectionRejectsEmptyFields(t *testing.T) {
	sel := &ResourceSelection{}
	if err := sel.Add(ResourceDescriptor{Kind: KindSecret}); err == nil {
		t.Errorf("expected error for empty name")
	}
	if err := sel.Add(ResourceDescriptor{Name: "x"}); err == nil {
		t.Errorf("expected error for empty kind")
	}
}

func TestTriggerEnvironmentValidate(t *testing.T) {
	cases := []struct {
		name string
		env  TriggerEnvironment
		ok   bool
	}{
		{"branch only", TriggerEnvironment{Name: "staging", BranchPattern: "^main$"}, true},
		{"tag only", TriggerEnvironment{Name: "prod", TagPattern: "^v.*$"}, true},
		{"both set", TriggerEnvironment{Name: "bad", BranchPattern: "^main$", TagPattern: "^v.*$"}, false},
		{"neither set", TriggerEnvironment{Name: "bad"}, false},
		{"missing name", TriggerEnvironment{BranchPattern: "^main$"}, false},
	}
	for _, tc := range cases {
		err := tc.env.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestTriggerEnvironmentBuildFileDefault(t *testing.T) {
	env := TriggerEnvironment{Name: "staging", BranchPattern: "^main$"}
	if got := env.BuildFile(); got != DefaultCloudBuildFile {
		t.Errorf("expected default build file; got %s", got)
	}
	env.CloudBuildFile = "cicd/custom.yaml"
	if got := env.BuildFile(); got != "cicd/custom.yaml" {
		t.Errorf("override ignored; got %s", got)
	}
}

func TestTrustStateFailedSteps(t *testing.T) {
	st := TrustState{
		StateStore:     StateStoreState{Result: EnsureResult{Outcome: OutcomeCreated}},
		DeployIdentity: DeployIdentityState{Result: EnsureResult{Outcome: OutcomeFailed}},
		NetworkBridge:  NetworkBridgeState{Result: EnsureResult{Outcome: OutcomeAlreadyPresent}},
	}
	if st.Ready() {
		t.Errorf("state with a failed step should not be ready")
	}
	failed := st.FailedSteps()
	if len(failed) != 1 || failed[0] != "deploy-identity" {
		t.Errorf("failed steps = %v; want [deploy-identity]", failed)
	}
}
