// Package state persists the local onboarding record. The record lives in
// the project repository under .terraseed/ and lets repeated runs resume:
// which project was imported, what bootstrap achieved and which triggers
// exist. It is a convenience cache, not a source of truth — the registry
// and the cloud control plane always win on disagreement.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/terraseed/terraseed/internal/models"
)

const (
	// Dir is the record directory relative to the repository root.
	Dir = ".terraseed"

	recordFile = "state.json"
)

// Record is everything one onboarding run leaves behind.
type Record struct {
	Client         string                `json:"client"`
	Project        string                `json:"project"`
	GCPProjectID   string                `json:"gcp_project_id"`
	Region         string                `json:"region"`
	StateBucket    string                `json:"state_bucket,omitempty"`
	DeployIdentity string                `json:"deploy_identity,omitempty"`
	Registered     bool                  `json:"registered"`
	Bootstrap      *models.TrustState    `json:"bootstrap,omitempty"`
	Triggers       *models.TriggerResult `json:"triggers,omitempty"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// Store reads and writes the record of one repository.
type Store struct {
	path string
}

// NewStore builds a store rooted at the repository root.
func NewStore(root string) *Store {
	return &Store{path: filepath.Join(root, Dir, recordFile)}
}

// Path returns the record file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the record. A repository that was never onboarded returns
// (nil, nil).
func (s *Store) Load() (*Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return &record, nil
}

// Save writes the record, stamping UpdatedAt.
func (s *Store) Save(record *Record) error {
	record.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode onboarding record: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(s.path), err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
