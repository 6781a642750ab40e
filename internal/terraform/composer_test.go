package terraform

import (
	"errors"
	"strings"
	"testing"

	"github.com/terraseed/terraseed/internal/models"
)

func testWorkspace() Workspace {
	return NewWorkspace("Acme", "Shop", "", "europe-north2")
}

func mustSelection(t *testing.T, descriptors ...models.ResourceDescriptor) *models.ResourceSelection {
	t.Helper()
	sel, err := models.NewResourceSelection(descriptors...)
	if err != nil {
		t.Fatalf("build selection: %v", err)
	}
	return sel
}

// joined concatenates every role text in emission order, which is the
// order the workspace presents them in.
func joined(set *ArtifactSet) string {
	var b strings.Builder
	for _, role := range set.Roles() {
		b.WriteString(set.Text(role))
		b.WriteString("\n")
	}
	return b.String()
}

func TestComposeSingleAdoptedService(t *testing.T) {
	sel := mustSelection(t, models.ResourceDescriptor{
		Kind: models.KindComputeService, Name: "api", Mode: models.ModeAdoptExisting,
	})
	c := NewComposer(testWorkspace())
	out, err := c.Compose(sel, nil)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	compute := out.Text(RoleCompute)
	if !strings.Contains(compute, `module "api"`) {
		t.Errorf("compute artifact missing service module:\n%s", compute)
	}
	if out.Text(RoleMigrationJob) != "" {
		t.Errorf("migration job emitted without a datastore")
	}
	if out.Text(RoleNetwork) != "" {
		t.Errorf("network artifact emitted without a bridge")
	}

	imports := out.Text(RoleImports)
	if got := len(out.Markers(RoleImports)); got != 1 {
		t.Fatalf("expected exactly 1 import directive; got %d:\n%s", got, imports)
	}
	wantLocator := `"locations/europe-north2/namespaces/acme-shop-prod/services/api"`
	if !strings.Contains(imports, wantLocator) {
		t.Errorf("import locator missing %s:\n%s", wantLocator, imports)
	}
}

func TestComposeDatastoreAndService(t *testing.T) {
	sel := mustSelection(t,
		models.ResourceDescriptor{Kind: models.KindManagedDatastore, Name: "main-db", Mode: models.ModeCreate},
		models.ResourceDescriptor{Kind: models.KindComputeService, Name: "api", Mode: models.ModeCreate},
	)
	c := NewComposer(testWorkspace())
	out, err := c.Compose(sel, nil)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	all := joined(out)
	identityDef := `resource "google_service_account" "app_runtime"`
	computeRef := "google_service_account.app_runtime.email"
	defIdx := strings.Index(all, identityDef)
	refIdx := strings.Index(all, computeRef)
	if defIdx < 0 || refIdx < 0 {
		t.Fatalf("identity definition or reference missing:\n%s", all)
	}
	if defIdx > refIdx {
		t.Errorf("identity defined at %d after first reference at %d", defIdx, refIdx)
	}

	job := out.Text(RoleMigrationJob)
	if job == "" {
		t.Fatalf("migration job missing for datastore+service selection")
	}
	if !strings.Contains(job, "module.main_db.connection_name") {
		t.Errorf("migration job does not reference the datastore:\n%s", job)
	}
	if !strings.Contains(job, "google_service_account.app_runtime.email") {
		t.Errorf("migration job does not reference the runtime identity:\n%s", job)
	}

	// No adoption directives for a pure-create selection.
	if out.Text(RoleImports) != "" {
		t.Errorf("imports emitted for create-only selection:\n%s", out.Text(RoleImports))
	}
}

func TestComposeUnchangedSelectionIsByteIdentical(t *testing.T) {
	sel := mustSelection(t,
		models.ResourceDescriptor{Kind: models.KindComputeService, Name: "api", Mode: models.ModeAdoptExisting},
		models.ResourceDescriptor{Kind: models.KindObjectStore, Name: "media", Mode: models.ModeCreate},
		models.ResourceDescriptor{Kind: models.KindSecret, Name: "dsn", Mode: models.ModeAdoptExisting},
	)
	c := NewComposer(testWorkspace())
	first, err := c.Compose(sel, nil)
	if err != nil {
		t.Fatalf("first compose: %v", err)
	}
	second, err := c.Compose(sel, first)
	if err != nil {
		t.Fatalf("second compose: %v", err)
	}
	for _, role := range AllRoles() {
		if first.Text(role) != second.Text(role) {
			t.Errorf("role %s changed on recompose:\n--- first\n%s\n--- second\n%s",
				role, first.Text(role), second.Text(role))
		}
	}
}

func TestComposeAppendsOnlyNewBlocks(t *testing.T) {
	base := mustSelection(t, models.ResourceDescriptor{
		Kind: models.KindComputeService, Name: "api", Mode: models.ModeCreate,
	})
	c := NewComposer(testWorkspace())
	first, err := c.Compose(base, nil)
	if err != nil {
		t.Fatalf("first compose: %v", err)
	}

	grown := mustSelection(t,
		models.ResourceDescriptor{Kind: models.KindComputeService, Name: "api", Mode: models.ModeCreate},
		models.ResourceDescriptor{Kind: models.KindComputeService, Name: "worker", Mode: models.ModeCreate},
	)
	second, err := c.Compose(grown, first)
	if err != nil {
		t.Fatalf("second compose: %v", err)
	}

	before := first.Text(RoleCompute)
	after := second.Text(RoleCompute)
	if !strings.HasPrefix(after, before) {
		t.Fatalf("existing compute text was rewritten:\n--- before\n%s\n--- after\n%s", before, after)
	}
	added := strings.TrimPrefix(after, before)
	if !strings.Contains(added, `module "worker"`) {
		t.Errorf("appended text missing new service:\n%s", added)
	}
	if strings.Contains(added, `module "api"`) {
		t.Errorf("existing service re-emitted:\n%s", added)
	}

	outs := second.Markers(RoleOutputs)
	if len(outs) != 2 {
		t.Errorf("expected 2 output markers; got %v", outs)
	}
}

func TestComposePreservesExistingPreamble(t *testing.T) {
	sel := mustSelection(t, models.ResourceDescriptor{
		Kind: models.KindComputeService, Name: "api", Mode: models.ModeCreate,
	})
	existing := NewArtifactSet()
	custom := "# locally adjusted backend\n"
	existing.setText(RoleBackend, custom)

	c := NewComposer(testWorkspace())
	out, err := c.Compose(sel, existing)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if out.Text(RoleBackend) != custom {
		t.Errorf("backend text rewritten:\n%s", out.Text(RoleBackend))
	}
	if existing.Text(RoleCompute) != "" {
		t.Errorf("input artifact set was mutated")
	}
}

func TestComposeIdentifierCollisionIsFatal(t *testing.T) {
	sel := mustSelection(t,
		models.ResourceDescriptor{Kind: models.KindComputeService, Name: "my-service", Mode: models.ModeCreate},
		models.ResourceDescriptor{Kind: models.KindComputeService, Name: "my.service", Mode: models.ModeCreate},
	)
	c := NewComposer(testWorkspace())
	_, err := c.Compose(sel, nil)
	var composeErr *models.ComposeError
	if !errors.As(err, &composeErr) {
		t.Fatalf("expected ComposeError for identifier collision; got %v", err)
	}
	if composeErr.Identifier != "my_service" {
		t.Errorf("collision identifier = %q; want my_service", composeErr.Identifier)
	}
}

func TestComposeSkipsPlatformManagedAccounts(t *testing.T) {
	sel := mustSelection(t, models.ResourceDescriptor{
		Kind: models.KindIdentity,
		Name: "1064116177689-compute@developer.gserviceaccount.com",
		Mode: models.ModeAdoptExisting,
	})
	c := NewComposer(testWorkspace())
	out, err := c.Compose(sel, nil)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got := out.Text(RoleIdentity); got != "" {
		t.Errorf("platform-managed account rendered:\n%s", got)
	}
	if got := out.Text(RoleImports); got != "" {
		t.Errorf("platform-managed account imported:\n%s", got)
	}
}

func TestComposeNetworkBridgeBeforeService(t *testing.T) {
	sel := mustSelection(t,
		models.ResourceDescriptor{Kind: models.KindComputeService, Name: "api", Mode: models.ModeCreate},
		models.ResourceDescriptor{Kind: models.KindNetworkBridge, Name: "svc-connector", Mode: models.ModeCreate},
	)
	c := NewComposer(testWorkspace())
	out, err := c.Compose(sel, nil)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	all := joined(out)
	def := strings.Index(all, `resource "google_vpc_access_connector" "svc_connector"`)
	ref := strings.Index(all, "google_vpc_access_connector.svc_connector.id")
	if def < 0 || ref < 0 {
		t.Fatalf("connector definition or reference missing:\n%s", all)
	}
	if def > ref {
		t.Errorf("connector defined at %d after reference at %d", def, ref)
	}
}

func TestComposeVariablesCarryWorkspaceDefaults(t *testing.T) {
	sel := mustSelection(t, models.ResourceDescriptor{
		Kind: models.KindObjectStore, Name: "media", Mode: models.ModeCreate,
	})
	out, err := NewComposer(testWorkspace()).Compose(sel, nil)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	backend := out.Text(RoleBackend)
	if !strings.Contains(backend, `bucket = "acme-terraform-state"`) {
		t.Errorf("backend bucket wrong:\n%s", backend)
	}
	if !strings.Contains(backend, `prefix = "shop/prod"`) {
		t.Errorf("backend prefix wrong:\n%s", backend)
	}
	vars := out.Text(RoleVariables)
	if !strings.Contains(vars, `default     = "acme-shop-prod"`) {
		t.Errorf("project id default wrong:\n%s", vars)
	}
}
