package hits

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/Kenkeni-ZJU/metabolisHMM/internal/fasta"
	"github.com/pkg/errors"
)

// Collection is the append-only, multi-genome sequence set of one marker.
// Records are labeled by genome only. Each Collection has its own lock, so
// genomes selected concurrently only contend on the same marker.
type Collection struct {
	Marker string

	mu   sync.Mutex
	seqs map[string]string
}

// NewCollection returns an empty collection for marker.
func NewCollection(marker string) *Collection {
	return &Collection{Marker: marker, seqs: make(map[string]string)}
}

// Add appends a genome's sequence. A genome can contribute at most once.
func (c *Collection) Add(genome, seq string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.seqs[genome]; exists {
		return errors.Errorf("genome %s already has a %s sequence", genome, c.Marker)
	}
	c.seqs[genome] = seq
	return nil
}

// Len is the number of genomes with a sequence.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seqs)
}

// Genomes returns the contributing genomes, sorted.
func (c *Collection) Genomes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	genomes := make([]string, 0, len(c.seqs))
	for g := range c.seqs {
		genomes = append(genomes, g)
	}
	sort.Strings(genomes)
	return genomes
}

// Records returns the collection as FASTA records, in the given genome order.
// Genomes without a sequence are skipped.
func (c *Collection) Records(order []string) []fasta.Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]fasta.Record, 0, len(c.seqs))
	for _, g := range order {
		if s, ok := c.seqs[g]; ok {
			records = append(records, fasta.Record{ID: g, Seq: s})
		}
	}
	return records
}

// Collections holds one Collection per panel marker.
type Collections struct {
	markers  []string
	byMarker map[string]*Collection
}

// NewCollections creates empty collections for a closed list of markers.
func NewCollections(markers []string) *Collections {
	cs := &Collections{
		markers:  append([]string(nil), markers...),
		byMarker: make(map[string]*Collection, len(markers)),
	}
	for _, m := range markers {
		cs.byMarker[m] = NewCollection(m)
	}
	return cs
}

// All returns every collection in panel order.
func (cs *Collections) All() []*Collection {
	all := make([]*Collection, len(cs.markers))
	for i, m := range cs.markers {
		all[i] = cs.byMarker[m]
	}
	return all
}

// Get returns a marker's collection. Markers outside the panel are an error.
func (cs *Collections) Get(marker string) (*Collection, error) {
	c, ok := cs.byMarker[marker]
	if !ok {
		return nil, errors.Errorf("marker %s is not in the panel", marker)
	}
	return c, nil
}

// Add appends a selected hit to its marker's collection.
func (cs *Collections) Add(sel Selected) error {
	c, err := cs.Get(sel.Marker)
	if err != nil {
		return err
	}
	return c.Add(sel.Genome, sel.Seq)
}

// WriteAll writes every collection to dir/<marker>.faa, genomes in the given order,
// and returns the written paths keyed by marker. Collections without sequences
// are not written.
func (cs *Collections) WriteAll(dir string, genomes []string) (map[string]string, error) {
	paths := make(map[string]string, len(cs.markers))
	for _, m := range cs.markers {
		c := cs.byMarker[m]
		if c.Len() == 0 {
			continue
		}

		path := filepath.Join(dir, m+".faa")
		if err := fasta.WriteFile(path, c.Records(genomes)); err != nil {
			return nil, errors.Wrapf(err, "failed to write %s collection", m)
		}
		paths[m] = path
	}
	return paths, nil
}
