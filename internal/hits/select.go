package hits

import (
	"strings"

	"github.com/Kenkeni-ZJU/metabolisHMM/internal/fasta"
	"github.com/pkg/errors"
)

// ErrAmbiguousHitResolution is returned when a hit's target does not resolve to
// exactly one normalized protein record.
var ErrAmbiguousHitResolution = errors.New("ambiguous hit resolution")

// Index maps normalized record identifiers to their sequences for one genome.
type Index map[string]string

// NewIndex indexes a genome's normalized records. Duplicate identifiers are an error.
func NewIndex(records []fasta.Record) (Index, error) {
	idx := make(Index, len(records))
	for _, r := range records {
		if _, dup := idx[r.ID]; dup {
			return nil, errors.Wrapf(ErrAmbiguousHitResolution, "duplicate record id %s", r.ID)
		}
		idx[r.ID] = r.Seq
	}
	return idx, nil
}

// Selected is the representative sequence of one marker in one genome.
type Selected struct {
	Genome   string
	Marker   string
	RecordID string
	Seq      string
}

// Select picks the top ranked hit of table and resolves it to a full sequence.
//
// The first row wins, ties included. An empty table is the normal absent-marker
// case and returns ok == false with no error. The target must equal a record id
// exactly; a target that is missing or only a substring of some record ids is
// reported as ErrAmbiguousHitResolution.
func Select(genome, marker string, table []Hit, idx Index) (sel Selected, ok bool, err error) {
	if len(table) == 0 {
		return Selected{}, false, nil
	}

	target := table[0].Target
	s, found := idx[target]
	if !found {
		partial := 0
		for id := range idx {
			if strings.Contains(id, target) {
				partial++
			}
		}
		return Selected{}, false, errors.Wrapf(
			ErrAmbiguousHitResolution,
			"%s hit %s in genome %s matches no record exactly (%d partial matches)",
			marker, target, genome, partial,
		)
	}

	return Selected{
		Genome:   genome,
		Marker:   marker,
		RecordID: target,
		Seq:      s,
	}, true, nil
}
