// internal/terraform/artifacts.go
package terraform

import (
	"strings"
)

// Role names one generated artifact category. Roles are always emitted in
// the fixed order returned by AllRoles; identity precedes compute so that
// service blocks can reference account identifiers defined above them, and
// import directives and outputs always come last.
type Role string

const (
	RoleBackend      Role = "backend"
	RoleVariables    Role = "variables"
	RoleProvider     Role = "provider"
	RoleNetwork      Role = "network"
	RoleIdentity     Role = "identity"
	RoleCompute      Role = "compute"
	RoleDatastore    Role = "datastore"
	RoleMigrationJob Role = "migration-job"
	RoleImports      Role = "import-directives"
	RoleOutputs      Role = "outputs"
)

// AllRoles returns every role in emission order.
func AllRoles() []Role {
	return []Role{
		RoleBackend,
		RoleVariables,
		RoleProvider,
		RoleNetwork,
		RoleIdentity,
		RoleCompute,
		RoleDatastore,
		RoleMigrationJob,
		RoleImports,
		RoleOutputs,
	}
}

// Filename returns the file a role is written to inside the workspace
// directory.
func (r Role) Filename() string {
	switch r {
	case RoleBackend:
		return "backend.tf"
	case RoleVariables:
		return "variables.tf"
	case RoleProvider:
		return "main.tf"
	case RoleNetwork:
		return "network.tf"
	case RoleIdentity:
		return "service-accounts.tf"
	case RoleCompute:
		return "cloud-run.tf"
	case RoleDatastore:
		return "datastores.tf"
	case RoleMigrationJob:
		return "migration-job.tf"
	case RoleImports:
		return "imports.tf"
	case RoleOutputs:
		return "outputs.tf"
	}
	return string(r) + ".tf"
}

// header is the first line of a role file when it is created.
func (r Role) header() string {
	switch r {
	case RoleNetwork:
		return "# Network\n"
	case RoleIdentity:
		return "# Service Accounts\n"
	case RoleCompute:
		return "# Cloud Run Services\n"
	case RoleDatastore:
		return "# Datastores\n"
	case RoleMigrationJob:
		return "# Migration Job\n"
	case RoleImports:
		return "# Terraform Import Blocks\n# These bring existing resources under management without recreating them.\n"
	case RoleOutputs:
		return "# Outputs\n"
	}
	return ""
}

// markerPrefix starts every logical resource block. The identifier after it
// is the dedup key the composer scans for before appending.
const markerPrefix = "# terraseed:id="

// marker renders the dedup header line for an identifier.
func marker(identifier string) string {
	return markerPrefix + identifier
}

// parseMarkers extracts every marker identifier from a role's text, in
// order of appearance.
func parseMarkers(text string) []string {
	var ids []string
	for _, line := range strings.Split(text, "\n") {
		if rest, ok := strings.CutPrefix(line, markerPrefix); ok {
			ids = append(ids, strings.TrimSpace(rest))
		}
	}
	return ids
}

// ArtifactSet is an ordered mapping of role to generated text. The zero
// value is an empty set.
type ArtifactSet struct {
	texts map[Role]string
}

// NewArtifactSet returns an empty set.
func NewArtifactSet() *ArtifactSet {
	return &ArtifactSet{texts: map[Role]string{}}
}

// Text returns a role's current text, empty when the role is absent.
func (s *ArtifactSet) Text(role Role) string {
	if s == nil || s.texts == nil {
		return ""
	}
	return s.texts[role]
}

// setText replaces a role's text.
func (s *ArtifactSet) setText(role Role, text string) {
	if s.texts == nil {
		s.texts = map[Role]string{}
	}
	s.texts[role] = text
}

// Roles returns the non-empty roles in emission order.
func (s *ArtifactSet) Roles() []Role {
	var out []Role
	for _, r := range AllRoles() {
		if s.Text(r) != "" {
			out = append(out, r)
		}
	}
	return out
}

// Markers returns the marker identifiers present in one role.
func (s *ArtifactSet) Markers(role Role) []string {
	return parseMarkers(s.Text(role))
}

// clone copies the set so composition never mutates its input.
func (s *ArtifactSet) clone() *ArtifactSet {
	out := NewArtifactSet()
	if s == nil {
		return out
	}
	for role, text := range s.texts {
		out.texts[role] = text
	}
	return out
}

// appendBlock adds one marked block at the end of a role's text, creating
// the role with its header on first use. Blocks are separated by one blank
// line and each ends with a newline.
func (s *ArtifactSet) appendBlock(role Role, block string) {
	text := s.Text(role)
	if text == "" {
		text = role.header()
	}
	if !strings.HasSuffix(block, "\n") {
		block += "\n"
	}
	s.setText(role, text+"\n"+block)
}
