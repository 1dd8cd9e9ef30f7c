// Package normalize gives every protein record of a run a stable, globally unique
// identifier of the form <genome>_<serial>.
package normalize

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Kenkeni-ZJU/metabolisHMM/internal/fasta"
	"github.com/pkg/errors"
)

// Format is the sequence type of a genome file.
type Format int

const (
	// Protein files (.faa) are normalized directly.
	Protein Format = iota + 1

	// Nucleotide files (.fna) go through gene calling first.
	Nucleotide
)

// String returns the Format's name.
func (f Format) String() string {
	switch f {
	case Protein:
		return "protein"
	case Nucleotide:
		return "nucleotide"
	default:
		return "unknown"
	}
}

// ErrUnsupportedInputFormat is returned for genome files that are neither .faa nor .fna.
var ErrUnsupportedInputFormat = errors.New("unsupported input format")

// extensions maps recognized genome file extensions to their format
var extensions = map[string]Format{
	".faa": Protein,
	".fna": Nucleotide,
}

// stopCodon is the symbol gene callers put at the end of translated proteins
const stopCodon = "*"

// Detect returns the format of a genome file from its extension.
func Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedInputFormat, "%s (expected .faa or .fna)", filepath.Base(path))
}

// GenomeName is the genome's identity: its file name without the extension.
func GenomeName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Serial is a run-scoped counter. It never resets between genomes, so
// identifiers stay unique across the whole run.
type Serial struct {
	mu   sync.Mutex
	last int
}

// Next returns the next serial number, starting at 1.
func (s *Serial) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

// Normalizer renames protein records using a shared Serial.
type Normalizer struct {
	serial *Serial
}

// New returns a Normalizer drawing identifiers from serial.
func New(serial *Serial) *Normalizer {
	return &Normalizer{serial: serial}
}

// ID formats a normalized record identifier.
func ID(genome string, serial int) string {
	return fmt.Sprintf("%s_%05d", genome, serial)
}

// Normalize renames records to <genome>_<serial> and strips stop codons.
// Records left empty after stripping are dropped.
func (n *Normalizer) Normalize(genome string, records []fasta.Record) []fasta.Record {
	normalized := make([]fasta.Record, 0, len(records))
	for _, r := range records {
		s := strings.ReplaceAll(r.Seq, stopCodon, "")
		if s == "" {
			continue
		}

		normalized = append(normalized, fasta.Record{
			ID:  ID(genome, n.serial.Next()),
			Seq: s,
		})
	}
	return normalized
}

// NormalizeFile reads the protein FASTA at in, normalizes it and writes the
// result to out. The normalized records are returned for hit resolution.
func (n *Normalizer) NormalizeFile(genome, in, out string) ([]fasta.Record, error) {
	records, err := fasta.Read(in)
	if err != nil {
		return nil, err
	}

	normalized := n.Normalize(genome, records)
	if len(normalized) == 0 {
		return nil, errors.Errorf("no protein sequences for genome %s in %s", genome, in)
	}

	if err := fasta.WriteFile(out, normalized); err != nil {
		return nil, err
	}

	return normalized, nil
}
