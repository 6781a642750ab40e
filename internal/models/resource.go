// internal/models/resource.go
package models

import "fmt"

// ResourceKind identifies the family a managed resource belongs to.
type ResourceKind string

const (
	KindComputeService     ResourceKind = "compute-service"
	KindManagedDatastore   ResourceKind = "managed-datastore"
	KindObjectStore        ResourceKind = "object-store"
	KindSecret             ResourceKind = "secret"
	KindIdentity           ResourceKind = "identity"
	KindNetworkBridge      ResourceKind = "network-bridge"
	KindTriggerEnvironment ResourceKind = "trigger-environment"
)

// ProvisionMode says whether a descriptor creates a new resource or adopts
// one that already exists in the project.
type ProvisionMode string

const (
	ModeCreate        ProvisionMode = "create"
	ModeAdoptExisting ProvisionMode = "adopt"
)

// ResourceDescriptor describes one resource the operator selected for
// management. Attributes carries kind-specific details discovered from the
// project (image, engine version, replication policy, ...).
type ResourceDescriptor struct {
	Kind       ResourceKind      `json:"kind"`
	Name       string            `json:"name"`
	Region     string            `json:"region,omitempty"`
	Mode       ProvisionMode     `json:"mode"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Attr returns a discovered attribute or the given fallback.
func (d ResourceDescriptor) Attr(key, fallback string) string {
	if v, ok := d.Attributes[key]; ok && v != "" {
		return v
	}
	return fallback
}

// IsAdopted reports whether the descriptor adopts a pre-existing resource.
func (d ResourceDescriptor) IsAdopted() bool {
	return d.Mode == ModeAdoptExisting
}

type selectionKey struct {
	kind ResourceKind
	name string
}

// ResourceSelection is an ordered set of descriptors. Order of insertion is
// preserved per kind, and a (kind, name) pair can appear at most once.
type ResourceSelection struct {
	descriptors []ResourceDescriptor
	seen        map[selectionKey]bool
}

// NewResourceSelection builds a selection from the given descriptors.
// Duplicate (kind, name) pairs are rejected.
func NewResourceSelection(descriptors ...ResourceDescriptor) (*ResourceSelection, error) {
	s := &ResourceSelection{seen: map[selectionKey]bool{}}
	for _, d := range descriptors {
		if err := s.Add(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends a descriptor, rejecting duplicates and empty names.
func (s *ResourceSelection) Add(d ResourceDescriptor) error {
	if d.Name == "" {
		return &SelectionError{Kind: d.Kind, Reason: "resource name is empty"}
	}
	if d.Kind == "" {
		return &SelectionError{Name: d.Name, Reason: "resource kind is empty"}
	}
	key := selectionKey{kind: d.Kind, name: d.Name}
	if s.seen[key] {
		return &SelectionError{Kind: d.Kind, Name: d.Name, Reason: "duplicate resource"}
	}
	if s.seen == nil {
		s.seen = map[selectionKey]bool{}
	}
	s.seen[key] = true
	s.descriptors = append(s.descriptors, d)
	return nil
}

// ByKind returns the descriptors of one kind in insertion order.
func (s *ResourceSelection) ByKind(kind ResourceKind) []ResourceDescriptor {
	if s == nil {
		return nil
	}
	var out []ResourceDescriptor
	for _, d := range s.descriptors {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// All returns every descriptor in insertion order.
func (s *ResourceSelection) All() []ResourceDescriptor {
	if s == nil {
		return nil
	}
	out := make([]ResourceDescriptor, len(s.descriptors))
	copy(out, s.descriptors)
	return out
}

// Has reports whether at least one descriptor of the kind is present.
func (s *ResourceSelection) Has(kind ResourceKind) bool {
	return len(s.ByKind(kind)) > 0
}

// Len returns the number of descriptors in the selection.
func (s *ResourceSelection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.descriptors)
}

// Adopted returns the descriptors marked for adoption, in insertion order.
func (s *ResourceSelection) Adopted() []ResourceDescriptor {
	if s == nil {
		return nil
	}
	var out []ResourceDescriptor
	for _, d := range s.descriptors {
		if d.IsAdopted() {
			out = append(out, d)
		}
	}
	return out
}

// Summary returns a short human-readable count per kind, e.g. for logs.
func (s *ResourceSelection) Summary() string {
	if s == nil || len(s.descriptors) == 0 {
		return "empty selection"
	}
	counts := map[ResourceKind]int{}
	var order []ResourceKind
	for _, d := range s.descriptors {
		if counts[d.Kind] == 0 {
			order = append(order, d.Kind)
		}
		counts[d.Kind]++
	}
	out := ""
	for i, k := range order {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s=%d", k, counts[k])
	}
	return out
}
