// internal/terraform/writer.go
package terraform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LoadArtifactSet reads the role files already present in dir. Missing
// files simply leave their role empty; a missing directory yields an empty
// set.
func LoadArtifactSet(dir string) (*ArtifactSet, error) {
	out := NewArtifactSet()
	for _, role := range AllRoles() {
		path := filepath.Join(dir, role.Filename())
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		out.setText(role, string(data))
	}
	return out, nil
}

// WriteArtifactSet writes every non-empty role to its file under dir,
// creating the directory if needed. Files whose content is already
// identical are left untouched. Returns the filenames written.
func WriteArtifactSet(dir string, set *ArtifactSet) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	var written []string
	for _, role := range set.Roles() {
		path := filepath.Join(dir, role.Filename())
		text := set.Text(role)
		if current, err := os.ReadFile(path); err == nil && string(current) == text {
			continue
		}
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, role.Filename())
	}
	return written, nil
}
