// internal/terraform/composer.go
package terraform

import (
	"github.com/juju/collections/set"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/terraseed/terraseed/internal/models"
	"github.com/terraseed/terraseed/internal/naming"
)

// Composer turns a resource selection into an artifact set. Composition is
// deterministic and append-only: blocks already present in the existing set
// (matched by marker identifier) are never rewritten or reordered, so
// re-composing an unchanged selection reproduces the input byte for byte.
type Composer struct {
	ws  Workspace
	rec *ImportReconciler
	log zerolog.Logger
}

// NewComposer creates a composer for one workspace.
func NewComposer(ws Workspace) *Composer {
	return &Composer{
		ws:  ws,
		rec: NewImportReconciler(ws),
		log: log.With().Str("component", "composer").Logger(),
	}
}

// Reconciler exposes the import reconciler bound to this workspace.
func (c *Composer) Reconciler() *ImportReconciler {
	return c.rec
}

// roleTracker carries the dedup state for one role during a compose run.
type roleTracker struct {
	present set.Strings // markers found in the existing text
	emitted set.Strings // markers appended during this run
}

// Compose renders the selection on top of an existing artifact set (nil or
// empty for a fresh workspace) and returns the result. The input set is
// never mutated. Two distinct resources sanitizing to the same identifier
// in one role is a fatal configuration conflict.
func (c *Composer) Compose(sel *models.ResourceSelection, existing *ArtifactSet) (*ArtifactSet, error) {
	out := existing.clone()

	// The preamble is written once and then left alone.
	if out.Text(RoleBackend) == "" {
		out.setText(RoleBackend, renderBackend(c.ws))
	}
	if out.Text(RoleVariables) == "" {
		out.setText(RoleVariables, renderVariables(c.ws))
	}
	if out.Text(RoleProvider) == "" {
		out.setText(RoleProvider, renderProvider(c.ws))
	}

	trackers := map[Role]*roleTracker{}
	add := func(role Role, id, block string) error {
		tr := trackers[role]
		if tr == nil {
			tr = &roleTracker{present: set.NewStrings(out.Markers(role)...), emitted: set.NewStrings()}
			trackers[role] = tr
		}
		if tr.emitted.Contains(id) {
			return &models.ComposeError{
				Role:       string(role),
				Identifier: id,
				Reason:     "two selected resources sanitize to the same identifier",
			}
		}
		if tr.present.Contains(id) {
			c.log.Debug().Str("role", string(role)).Str("identifier", id).Msg("block already present, skipping")
			return nil
		}
		tr.emitted.Add(id)
		out.appendBlock(role, block)
		return nil
	}

	bridges := sel.ByKind(models.KindNetworkBridge)
	services := sel.ByKind(models.KindComputeService)
	datastores := sel.ByKind(models.KindManagedDatastore)

	for _, d := range bridges {
		id, block := renderNetworkBridge(c.ws, d)
		if err := add(RoleNetwork, id, block); err != nil {
			return nil, err
		}
	}

	// Workloads run as a synthesized runtime account, emitted ahead of any
	// service block that references it.
	if len(services) > 0 {
		id, block := renderRuntimeIdentity()
		if err := add(RoleIdentity, id, block); err != nil {
			return nil, err
		}
	}
	for _, d := range sel.ByKind(models.KindIdentity) {
		if accountIsPlatformManaged(d.Name) {
			c.log.Debug().Str("account", d.Name).Msg("skipping platform-managed account")
			continue
		}
		id, block := renderIdentity(d)
		if err := add(RoleIdentity, id, block); err != nil {
			return nil, err
		}
	}

	connectorID := ""
	if len(bridges) > 0 {
		connectorID = naming.Sanitize(bridges[0].Name, bridges[0].Kind)
	}
	for _, d := range services {
		id, block := renderComputeService(c.ws, d, connectorID)
		if err := add(RoleCompute, id, block); err != nil {
			return nil, err
		}
	}

	for _, d := range datastores {
		id, block := renderManagedDatastore(d)
		if err := add(RoleDatastore, id, block); err != nil {
			return nil, err
		}
	}
	for _, d := range sel.ByKind(models.KindObjectStore) {
		id, block := renderObjectStore(c.ws, d)
		if err := add(RoleDatastore, id, block); err != nil {
			return nil, err
		}
	}
	for _, d := range sel.ByKind(models.KindSecret) {
		id, block := renderSecret(d)
		if err := add(RoleDatastore, id, block); err != nil {
			return nil, err
		}
	}

	if len(datastores) > 0 && len(services) > 0 {
		dsID := naming.Sanitize(datastores[0].Name, datastores[0].Kind)
		id, block := renderMigrationJob(dsID)
		if err := add(RoleMigrationJob, id, block); err != nil {
			return nil, err
		}
	}

	for _, dir := range c.rec.Reconcile(sel) {
		id, block := c.rec.renderImport(dir)
		if err := add(RoleImports, id, block); err != nil {
			return nil, err
		}
	}

	for _, d := range services {
		id, block := renderComputeOutput(d)
		if err := add(RoleOutputs, id, block); err != nil {
			return nil, err
		}
	}
	for _, d := range datastores {
		id, block := renderDatastoreOutput(d)
		if err := add(RoleOutputs, id, block); err != nil {
			return nil, err
		}
	}

	return out, nil
}
