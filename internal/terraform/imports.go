// internal/terraform/imports.go
package terraform

import (
	"fmt"
	"strings"

	"github.com/juju/collections/set"

	"github.com/terraseed/terraseed/internal/models"
	"github.com/terraseed/terraseed/internal/naming"
)

// ImportDirective binds an existing external resource to the generated
// artifact address that will manage it. Directives are data only; the
// downstream apply step consumes them once.
type ImportDirective struct {
	Kind            models.ResourceKind `json:"kind"`
	Identifier      string              `json:"identifier"`
	TargetAddress   string              `json:"target_address"`
	ExternalLocator string              `json:"external_locator"`
}

// ImportReconciler derives adoption directives from a selection.
type ImportReconciler struct {
	ws Workspace
}

// NewImportReconciler creates a reconciler for one workspace.
func NewImportReconciler(ws Workspace) *ImportReconciler {
	return &ImportReconciler{ws: ws}
}

// Reconcile returns one directive per adopted descriptor, deduplicated by
// external locator. Adopted accounts with digit-leading IDs are skipped;
// those are platform-managed agents, not importable user accounts.
func (r *ImportReconciler) Reconcile(sel *models.ResourceSelection) []ImportDirective {
	var out []ImportDirective
	seen := set.NewStrings()
	for _, d := range sel.Adopted() {
		dir, ok := r.directive(d)
		if !ok || seen.Contains(dir.ExternalLocator) {
			continue
		}
		seen.Add(dir.ExternalLocator)
		out = append(out, dir)
	}
	return out
}

func (r *ImportReconciler) directive(d models.ResourceDescriptor) (ImportDirective, bool) {
	id := naming.Sanitize(d.Name, d.Kind)
	region := d.Region
	if region == "" {
		region = r.ws.Region
	}

	switch d.Kind {
	case models.KindComputeService:
		return ImportDirective{
			Kind:            d.Kind,
			Identifier:      id,
			TargetAddress:   fmt.Sprintf("module.%s.google_cloud_run_service.service", id),
			ExternalLocator: fmt.Sprintf("locations/%s/namespaces/%s/services/%s", region, r.ws.ProjectID, d.Name),
		}, true
	case models.KindIdentity:
		if accountIsPlatformManaged(d.Name) {
			return ImportDirective{}, false
		}
		return ImportDirective{
			Kind:            d.Kind,
			Identifier:      id,
			TargetAddress:   fmt.Sprintf("google_service_account.%s", id),
			ExternalLocator: d.Name,
		}, true
	case models.KindObjectStore:
		return ImportDirective{
			Kind:            d.Kind,
			Identifier:      id,
			TargetAddress:   fmt.Sprintf("module.%s.google_storage_bucket.bucket", id),
			ExternalLocator: d.Name,
		}, true
	case models.KindSecret:
		return ImportDirective{
			Kind:            d.Kind,
			Identifier:      id,
			TargetAddress:   fmt.Sprintf("google_secret_manager_secret.%s", id),
			ExternalLocator: d.Name,
		}, true
	case models.KindManagedDatastore:
		return ImportDirective{
			Kind:            d.Kind,
			Identifier:      id,
			TargetAddress:   fmt.Sprintf("module.%s.google_sql_database_instance.instance", id),
			ExternalLocator: d.Name,
		}, true
	case models.KindNetworkBridge:
		return ImportDirective{
			Kind:            d.Kind,
			Identifier:      id,
			TargetAddress:   fmt.Sprintf("google_vpc_access_connector.%s", id),
			ExternalLocator: fmt.Sprintf("projects/%s/locations/%s/connectors/%s", r.ws.ProjectID, region, d.Name),
		}, true
	}
	return ImportDirective{}, false
}

// accountIsPlatformManaged reports whether a service account email belongs
// to an agent Google provisions itself (numeric project-number prefix).
func accountIsPlatformManaged(email string) bool {
	local := email
	if i := strings.Index(local, "@"); i >= 0 {
		local = local[:i]
	}
	return local != "" && local[0] >= '0' && local[0] <= '9'
}

// providerImportID expands a directive's locator into the form the
// provider's import accepts.
func (r *ImportReconciler) providerImportID(dir ImportDirective) string {
	switch dir.Kind {
	case models.KindIdentity:
		return fmt.Sprintf("projects/%s/serviceAccounts/%s", r.ws.ProjectID, dir.ExternalLocator)
	case models.KindSecret:
		return fmt.Sprintf("projects/%s/secrets/%s", r.ws.ProjectID, dir.ExternalLocator)
	}
	return dir.ExternalLocator
}

// renderImport emits one import block.
func (r *ImportReconciler) renderImport(dir ImportDirective) (string, string) {
	return dir.Identifier, fmt.Sprintf(`%s
import {
  to = %s
  id = %q
}
`, marker(dir.Identifier), dir.TargetAddress, r.providerImportID(dir))
}
