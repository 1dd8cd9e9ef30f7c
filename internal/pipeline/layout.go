package pipeline

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrOutputDirectoryConflict is returned when the run directory already exists.
var ErrOutputDirectoryConflict = errors.New("output directory already exists")

// Layout is the file tree of one run, rooted at Root.
type Layout struct {
	Root string
}

// Genes is where called genes of a nucleotide genome are written.
func (l Layout) Genes(genome string) string {
	return filepath.Join(l.Root, "genes", genome+".faa")
}

// Proteins is the canonical location of a genome's normalized proteins.
func (l Layout) Proteins(genome string) string {
	return filepath.Join(l.Root, "proteins", genome+".faa")
}

// HitTable is the hmmsearch table of one marker in one genome.
func (l Layout) HitTable(genome, marker string) string {
	return filepath.Join(l.Root, "hits", genome, genome+"-"+marker+".tbl")
}

// Markers is the directory of per-marker sequence collections.
func (l Layout) Markers() string {
	return filepath.Join(l.Root, "markers")
}

// Collection is the unaligned sequences of a marker, one per genome.
func (l Layout) Collection(marker string) string {
	return filepath.Join(l.Markers(), marker+".faa")
}

// Alignment is the aligned collection of a marker.
func (l Layout) Alignment(marker string) string {
	return filepath.Join(l.Root, "alignments", marker+".afa")
}

// Supermatrix is the concatenated alignment.
func (l Layout) Supermatrix() string {
	return filepath.Join(l.Root, "supermatrix.afa")
}

// Partitions is the marker column ranges of the supermatrix.
func (l Layout) Partitions() string {
	return filepath.Join(l.Root, "supermatrix.partitions")
}

// LowCoverage is the report of genomes with too few markers.
func (l Layout) LowCoverage() string {
	return filepath.Join(l.Root, "low-coverage-genomes.txt")
}

// HitCounts is the genome x marker hit count table.
func (l Layout) HitCounts() string {
	return filepath.Join(l.Root, "marker-hit-counts.csv")
}

// Manifest is the record of the run.
func (l Layout) Manifest() string {
	return filepath.Join(l.Root, "manifest.yaml")
}

// Tree is the directory of tree inference artifacts.
func (l Layout) Tree() string {
	return filepath.Join(l.Root, "tree")
}

// Prepare creates the run's directories. It refuses to reuse an existing
// Root so results of different runs never mix.
func (l Layout) Prepare(genomes []string) error {
	if _, err := os.Stat(l.Root); err == nil {
		return errors.Wrapf(ErrOutputDirectoryConflict, "%s", l.Root)
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to check output directory %s", l.Root)
	}

	dirs := []string{
		filepath.Join(l.Root, "genes"),
		filepath.Join(l.Root, "proteins"),
		l.Markers(),
		filepath.Join(l.Root, "alignments"),
		l.Tree(),
	}
	for _, g := range genomes {
		dirs = append(dirs, filepath.Join(l.Root, "hits", g))
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return errors.Wrapf(err, "failed to create %s", d)
		}
	}
	return nil
}
