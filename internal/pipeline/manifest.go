package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/Kenkeni-ZJU/metabolisHMM/internal/coverage"
	"github.com/Kenkeni-ZJU/metabolisHMM/internal/normalize"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Genome is one input genome of a run.
type Genome struct {
	Name     string           `yaml:"name"`
	Source   string           `yaml:"source"`
	Format   normalize.Format `yaml:"-"`
	Proteins int              `yaml:"proteins"`
	Markers  int              `yaml:"markers"`
}

// Marker is one panel marker of a run.
type Marker struct {
	Name    string `yaml:"name"`
	Profile string `yaml:"profile"`
	Genomes int    `yaml:"genomes"`
	Width   int    `yaml:"width"`

	// Placeholder is set when no genome had a hit and the width is the profile length
	Placeholder bool `yaml:"placeholder,omitempty"`
}

// Manifest is the explicit work list of a run: every stage iterates its
// genomes and markers instead of rediscovering files on disk.
type Manifest struct {
	Domain      string            `yaml:"domain"`
	Filler      string            `yaml:"filler"`
	MinMarkers  int               `yaml:"min_markers"`
	Width       int               `yaml:"width"`
	Genomes     []Genome          `yaml:"genomes"`
	Markers     []Marker          `yaml:"markers"`
	LowCoverage []coverage.Record `yaml:"low_coverage,omitempty"`
}

// GenomeNames returns genome names in manifest order.
func (m *Manifest) GenomeNames() []string {
	names := make([]string, len(m.Genomes))
	for i, g := range m.Genomes {
		names[i] = g.Name
	}
	return names
}

// Write saves the manifest as YAML.
func (m *Manifest) Write(path string) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "failed to serialize manifest")
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return errors.Wrap(err, "failed to write manifest")
	}
	return nil
}

// ReadManifest loads a manifest written by Write.
func ReadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return &m, nil
}

// DiscoverGenomes lists the genomes of an input directory, sorted by file name.
// Any file with an unsupported extension aborts discovery, as do two files
// sharing a genome name and names with whitespace. Hidden files and directories are skipped.
func DiscoverGenomes(dir string) ([]Genome, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read genome directory %s", dir)
	}

	var genomes []Genome
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		path := filepath.Join(dir, e.Name())
		format, err := normalize.Detect(path)
		if err != nil {
			return nil, err
		}

		name := normalize.GenomeName(path)
		if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
			return nil, errors.Errorf("genome name %q of %s has whitespace; FASTA ids cannot hold it", name, e.Name())
		}
		if prev, dup := seen[name]; dup {
			return nil, errors.Errorf("genome %s is in both %s and %s", name, prev, e.Name())
		}
		seen[name] = e.Name()

		genomes = append(genomes, Genome{Name: name, Source: path, Format: format})
	}

	if len(genomes) == 0 {
		return nil, errors.Errorf("no .faa or .fna genomes in %s", dir)
	}
	return genomes, nil
}
