package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Document is one input document declared in the sources file.
type Document struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type sourcesFile struct {
	Documents []Document `yaml:"documents"`
}

// LoadSources parses a YAML sources file. Relative document paths are
// resolved against baseDir; when baseDir is empty the file's own directory
// is used. Documents without a name take their file name.
func LoadSources(path, baseDir string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources file %s: %w", path, err)
	}

	var sf sourcesFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing sources file %s: %w", path, err)
	}

	if baseDir == "" {
		baseDir = filepath.Dir(path)
	}

	docs := make([]Document, 0, len(sf.Documents))
	for i, d := range sf.Documents {
		if d.Path == "" {
			return nil, fmt.Errorf("sources file %s: document %d has no path", path, i+1)
		}
		if !filepath.IsAbs(d.Path) {
			d.Path = filepath.Join(baseDir, d.Path)
		}
		if d.Name == "" {
			d.Name = filepath.Base(d.Path)
		}
		docs = append(docs, d)
	}
	return docs, nil
}
