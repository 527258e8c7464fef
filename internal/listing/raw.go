package listing

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Raw is one block as delivered by the chapter extraction step, in document
// order, before classification.
type Raw struct {
	Classes       []string `yaml:"classes,omitempty"`
	Ref           string   `yaml:"ref,omitempty"`
	Filename      string   `yaml:"filename,omitempty"`
	Text          string   `yaml:"text,omitempty"`
	Output        string   `yaml:"output,omitempty"`
	Diff          string   `yaml:"diff,omitempty"`
	ExpectFailure bool     `yaml:"expectFailure,omitempty"`
}

// Manifest is the extraction output for one chapter.
type Manifest struct {
	Chapter  int   `yaml:"chapter"`
	Listings []Raw `yaml:"listings"`
}

// LoadManifest reads a YAML listings manifest from fs.
func LoadManifest(fs afero.Fs, path string) (Manifest, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read listings: %w", err)
	}
	return ParseManifest(b)
}

// ParseManifest decodes manifest bytes.
func ParseManifest(b []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return Manifest{}, fmt.Errorf("invalid listings: %v", err)
	}
	if m.Chapter <= 0 {
		return Manifest{}, fmt.Errorf("invalid listings: missing chapter")
	}
	return m, nil
}
