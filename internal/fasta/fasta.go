// Package fasta reads and writes the FASTA files passed between pipeline stages.
package fasta

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
)

// LineWidth is the sequence line width of written FASTA files.
const LineWidth = 60

// Record is a single FASTA entry. Only the first word of a header is kept as ID.
type Record struct {
	ID  string
	Seq string
}

// Read parses every record in the FASTA file at path.
func Read(path string) (records []Record, err error) {
	reader, err := fastx.NewReader(seq.Unlimit, path, "")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer reader.Close()

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path)
		}

		// copy out of the reader's buffers
		records = append(records, Record{
			ID:  string(record.ID),
			Seq: string(record.Seq.Seq),
		})
	}

	return records, nil
}

// Write writes records to w. Headers carry the record ID and nothing else.
func Write(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		s, err := seq.NewSeqWithoutValidation(seq.Unlimit, []byte(r.Seq))
		if err != nil {
			return errors.Wrapf(err, "failed to create sequence for %s", r.ID)
		}

		record := &fastx.Record{
			ID:   []byte(r.ID),
			Name: []byte(r.ID),
			Seq:  s,
		}
		if _, err := bw.Write(record.Format(LineWidth)); err != nil {
			return errors.Wrapf(err, "failed to write %s", r.ID)
		}
	}

	return bw.Flush()
}

// WriteFile creates (or truncates) the file at path and writes records to it.
func WriteFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}

	if err := Write(f, records); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
