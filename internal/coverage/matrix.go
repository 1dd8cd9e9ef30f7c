package coverage

import (
	"encoding/csv"
	"io"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

// HitMatrix is the genome x marker table of raw hit counts.
type HitMatrix struct {
	Genomes []string
	Markers []string

	mu     sync.Mutex
	counts map[string]map[string]int
}

// NewHitMatrix returns a zeroed matrix.
func NewHitMatrix(genomes, markers []string) *HitMatrix {
	h := &HitMatrix{
		Genomes: append([]string(nil), genomes...),
		Markers: append([]string(nil), markers...),
		counts:  make(map[string]map[string]int, len(genomes)),
	}
	for _, g := range genomes {
		h.counts[g] = make(map[string]int, len(markers))
	}
	return h
}

// Set records the number of hits of marker in genome.
func (h *HitMatrix) Set(genome, marker string, n int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	row, ok := h.counts[genome]
	if !ok {
		return errors.Errorf("genome %s is not in the hit matrix", genome)
	}
	row[marker] = n
	return nil
}

// Get returns the number of hits of marker in genome.
func (h *HitMatrix) Get(genome, marker string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[genome][marker]
}

// WriteCSV writes the matrix with a header row of markers and a row per genome.
func (h *HitMatrix) WriteCSV(w io.Writer) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"genome"}, h.Markers...)); err != nil {
		return err
	}

	for _, g := range h.Genomes {
		row := make([]string, 0, len(h.Markers)+1)
		row = append(row, g)
		for _, m := range h.Markers {
			row = append(row, strconv.Itoa(h.counts[g][m]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
