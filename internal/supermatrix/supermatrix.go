package supermatrix

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Kenkeni-ZJU/metabolisHMM/internal/fasta"
	"github.com/pkg/errors"
)

// DefaultFiller is the missing-data symbol used for absent markers.
const DefaultFiller = '?'

// Block is the column range of one marker in the supermatrix (0-indexed, end exclusive).
type Block struct {
	Marker string
	Start  int
	End    int
}

// Width is the number of columns of the block.
func (b Block) Width() int {
	return b.End - b.Start
}

// Matrix is the concatenated alignment.
type Matrix struct {
	// Genomes in row order
	Genomes []string

	// Blocks in marker order
	Blocks []Block

	// Rows by genome, each Width wide
	Rows map[string]string

	// Width shared by every row
	Width int
}

// Build concatenates alignments, in the order given, over the union of their genomes.
func Build(alignments []*Alignment, filler byte) (*Matrix, error) {
	seen := make(map[string]bool)
	var genomes []string
	for _, a := range alignments {
		for g := range a.Rows {
			if !seen[g] {
				seen[g] = true
				genomes = append(genomes, g)
			}
		}
	}
	sort.Strings(genomes)

	return build(alignments, genomes, filler)
}

// BuildWithGenomes concatenates alignments over an explicit genome list, so genomes
// absent from every alignment still get an all-filler row. Alignments that
// mention a genome outside the list are an error.
func BuildWithGenomes(alignments []*Alignment, genomes []string, filler byte) (*Matrix, error) {
	known := make(map[string]bool, len(genomes))
	for _, g := range genomes {
		if known[g] {
			return nil, errors.Errorf("genome %s listed twice", g)
		}
		known[g] = true
	}

	for _, a := range alignments {
		for g := range a.Rows {
			if !known[g] {
				return nil, errors.Errorf("alignment of %s has unknown genome %s", a.Marker, g)
			}
		}
	}

	return build(alignments, genomes, filler)
}

func build(alignments []*Alignment, genomes []string, filler byte) (*Matrix, error) {
	if len(alignments) == 0 {
		return nil, errors.Wrap(ErrEmptyMarkerSet, "no marker alignments to concatenate")
	}

	m := &Matrix{
		Genomes: append([]string(nil), genomes...),
		Rows:    make(map[string]string, len(genomes)),
	}

	markers := make(map[string]bool, len(alignments))
	for _, a := range alignments {
		if a.Width <= 0 {
			return nil, errors.Wrapf(ErrEmptyMarkerSet, "alignment of %s has width %d", a.Marker, a.Width)
		}
		if markers[a.Marker] {
			return nil, errors.Errorf("marker %s given twice", a.Marker)
		}
		markers[a.Marker] = true

		m.Blocks = append(m.Blocks, Block{Marker: a.Marker, Start: m.Width, End: m.Width + a.Width})
		m.Width += a.Width
	}

	for _, g := range genomes {
		var row strings.Builder
		row.Grow(m.Width)
		for _, a := range alignments {
			if s, present := a.Rows[g]; present {
				row.WriteString(s)
			} else {
				row.WriteString(strings.Repeat(string(filler), a.Width))
			}
		}
		m.Rows[g] = row.String()
	}

	return m, nil
}

// Slice returns one genome's columns for one marker.
func (m *Matrix) Slice(genome, marker string) (string, error) {
	row, ok := m.Rows[genome]
	if !ok {
		return "", errors.Errorf("no row for genome %s", genome)
	}
	for _, b := range m.Blocks {
		if b.Marker == marker {
			return row[b.Start:b.End], nil
		}
	}
	return "", errors.Errorf("no block for marker %s", marker)
}

// Records returns the rows as FASTA records, in genome order.
func (m *Matrix) Records() []fasta.Record {
	records := make([]fasta.Record, 0, len(m.Genomes))
	for _, g := range m.Genomes {
		records = append(records, fasta.Record{ID: g, Seq: m.Rows[g]})
	}
	return records
}

// Write writes the matrix as aligned FASTA. Headers hold only the genome.
func (m *Matrix) Write(w io.Writer) error {
	return fasta.Write(w, m.Records())
}

// WriteFile writes the matrix as aligned FASTA to path.
func (m *Matrix) WriteFile(path string) error {
	return fasta.WriteFile(path, m.Records())
}

// WritePartitions writes a RAxML style partition file, one line per marker
// with its 1-based inclusive column range.
func (m *Matrix) WritePartitions(w io.Writer, model string) error {
	for _, b := range m.Blocks {
		if _, err := fmt.Fprintf(w, "%s, %s = %d-%d\n", model, b.Marker, b.Start+1, b.End); err != nil {
			return err
		}
	}
	return nil
}

// WritePartitionsFile writes the partition file to path.
func (m *Matrix) WritePartitionsFile(path, model string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := m.WritePartitions(f, model); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return f.Close()
}
