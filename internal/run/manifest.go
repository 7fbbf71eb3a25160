package run

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ManifestName is the manifest file written into every run directory.
const ManifestName = "manifest.json"

// Manifest records what a run produced, so run directories can be
// checked for completeness and picked up by later reporting.
type Manifest struct {
	Created   time.Time       `json:"created"`
	Input     string          `json:"input"`
	Solver    string          `json:"solver"`
	Scenarios []ScenarioEntry `json:"scenarios"`
	// Files lists every produced file relative to the run directory,
	// excluding the manifest itself.
	Files []string `json:"files"`

	// Dir is the run directory; set on load, not serialised.
	Dir string `json:"-"`
}

// ScenarioEntry summarises one solved scenario.
type ScenarioEntry struct {
	Name      string   `json:"name"`
	Objective float64  `json:"objective"` // EUR/a
	Files     []string `json:"files"`
}

// ResultPath returns the snapshot path of the named scenario.
func (m *Manifest) ResultPath(scenario string) string {
	return filepath.Join(m.Dir, "result-"+scenario+".json.gz")
}

// Save writes the manifest as indented JSON.
func (m *Manifest) Save(path string) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("run: marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("run: write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads the manifest of a run directory.
func LoadManifest(dir string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("run: read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("run: parse manifest: %w", err)
	}
	m.Dir = dir
	return &m, nil
}

// Validate checks that every file the manifest names actually exists
// in the run directory and is non-empty. It returns the list of
// missing or empty files; an empty list means the directory is intact.
func (m *Manifest) Validate() ([]string, error) {
	if m.Dir == "" {
		return nil, fmt.Errorf("run: manifest has no directory")
	}
	var broken []string
	for _, name := range m.Files {
		info, err := os.Stat(filepath.Join(m.Dir, name))
		switch {
		case os.IsNotExist(err):
			broken = append(broken, name)
		case err != nil:
			return nil, fmt.Errorf("run: stat %s: %w", name, err)
		case info.Size() == 0:
			broken = append(broken, name)
		}
	}
	return broken, nil
}
