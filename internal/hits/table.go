// Package hits parses profile search results and picks one representative
// sequence per genome and marker.
package hits

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Hit is a single target row of a hmmsearch --tblout table.
type Hit struct {
	// Target is the name of the matched protein record
	Target string

	// EValue is the full sequence E-value
	EValue float64

	// Score is the full sequence bit score
	Score float64
}

// ParseTable reads the rows of HMMER3 per-target tabular output, in table order.
// Rank is the position in the table; no re-sorting by score happens here.
func ParseTable(r io.Reader) (table []Hit, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()

		// comment lines start with a #
		if strings.HasPrefix(text, "#") || strings.TrimSpace(text) == "" {
			continue
		}

		// target, accession, query, accession, E-value, score, ...
		cols := strings.Fields(text)
		if len(cols) < 6 {
			return nil, errors.Errorf("line %d: expected at least 6 columns, found %d", line, len(cols))
		}

		evalue, err := strconv.ParseFloat(cols[4], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad E-value", line)
		}
		score, err := strconv.ParseFloat(cols[5], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad score", line)
		}

		table = append(table, Hit{
			Target: cols[0],
			EValue: evalue,
			Score:  score,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read hit table")
	}

	return table, nil
}

// ReadTable parses the hit table at path.
func ReadTable(path string) ([]Hit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open hit table")
	}
	defer f.Close()

	table, err := ParseTable(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return table, nil
}
