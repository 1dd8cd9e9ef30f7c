// Package supermatrix concatenates per-marker alignments into one gap-padded
// alignment with a row per genome.
package supermatrix

import (
	"sort"

	"github.com/Kenkeni-ZJU/metabolisHMM/internal/fasta"
	"github.com/pkg/errors"
)

// ErrEmptyMarkerSet is returned when there is nothing to concatenate: no
// alignments at all, or an alignment without columns.
var ErrEmptyMarkerSet = errors.New("empty marker set")

// Alignment is one marker's alignment, keyed by genome. Every row is Width wide.
type Alignment struct {
	Marker string
	Width  int
	Rows   map[string]string
}

// NewAlignment validates aligned records and indexes them by genome.
func NewAlignment(marker string, records []fasta.Record) (*Alignment, error) {
	if len(records) == 0 {
		return nil, errors.Wrapf(ErrEmptyMarkerSet, "alignment of %s has no sequences", marker)
	}

	a := &Alignment{
		Marker: marker,
		Width:  len(records[0].Seq),
		Rows:   make(map[string]string, len(records)),
	}
	if a.Width == 0 {
		return nil, errors.Wrapf(ErrEmptyMarkerSet, "alignment of %s has width 0", marker)
	}

	for _, r := range records {
		if len(r.Seq) != a.Width {
			return nil, errors.Errorf(
				"alignment of %s is ragged: %s has %d columns, expected %d",
				marker, r.ID, len(r.Seq), a.Width,
			)
		}
		if _, dup := a.Rows[r.ID]; dup {
			return nil, errors.Errorf("alignment of %s has genome %s twice", marker, r.ID)
		}
		a.Rows[r.ID] = r.Seq
	}

	return a, nil
}

// Placeholder is an alignment with no rows: every genome gets filler for it.
// It is used for markers no genome had a hit for.
func Placeholder(marker string, width int) *Alignment {
	return &Alignment{Marker: marker, Width: width, Rows: map[string]string{}}
}

// ReadAlignment loads a marker's aligned FASTA file.
func ReadAlignment(marker, path string) (*Alignment, error) {
	records, err := fasta.Read(path)
	if err != nil {
		return nil, err
	}
	return NewAlignment(marker, records)
}

// Genomes returns the genomes present in the alignment, sorted.
func (a *Alignment) Genomes() []string {
	genomes := make([]string, 0, len(a.Rows))
	for g := range a.Rows {
		genomes = append(genomes, g)
	}
	sort.Strings(genomes)
	return genomes
}
