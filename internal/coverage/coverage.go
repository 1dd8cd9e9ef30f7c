// Package coverage counts how many markers each genome contributed a real
// sequence to, and flags genomes with too few.
package coverage

import (
	"fmt"
	"io"

	"github.com/Kenkeni-ZJU/metabolisHMM/internal/hits"
)

// DefaultCutoff is the minimum number of markers a genome should have.
const DefaultCutoff = 12

// Record is the marker tally of one genome.
type Record struct {
	Genome  string `yaml:"genome"`
	Markers int    `yaml:"markers"`
}

// Report is the tally of every genome in a run.
type Report struct {
	Records []Record
}

// Tally counts, per genome, the markers whose collection holds a sequence for it.
// It reads the per-marker collections rather than the supermatrix, so filler
// never counts. Genomes are reported in the order given; genomes that
// contributed to no marker get a zero tally.
func Tally(cs *hits.Collections, genomes []string) Report {
	counts := make(map[string]int, len(genomes))
	for _, c := range cs.All() {
		for _, g := range c.Genomes() {
			counts[g]++
		}
	}

	r := Report{Records: make([]Record, 0, len(genomes))}
	for _, g := range genomes {
		r.Records = append(r.Records, Record{Genome: g, Markers: counts[g]})
	}
	return r
}

// Count returns a genome's tally.
func (r Report) Count(genome string) (int, bool) {
	for _, rec := range r.Records {
		if rec.Genome == genome {
			return rec.Markers, true
		}
	}
	return 0, false
}

// Below returns the genomes whose tally is strictly less than cutoff.
func (r Report) Below(cutoff int) []Record {
	var low []Record
	for _, rec := range r.Records {
		if rec.Markers < cutoff {
			low = append(low, rec)
		}
	}
	return low
}

// WriteReport writes one line per low coverage genome.
func WriteReport(w io.Writer, low []Record, cutoff int) error {
	for _, rec := range low {
		if _, err := fmt.Fprintf(w, "%s has fewer than %d markers (%d found)\n", rec.Genome, cutoff, rec.Markers); err != nil {
			return err
		}
	}
	return nil
}
