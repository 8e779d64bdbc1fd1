// Package csvin reads CSV sequence tables. The header row must contain the
// "header" and "sequence" columns; a "description" column is mapped onto the
// record description and any remaining columns are carried as extra string
// fields.
package csvin

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/mathysgrapotte/bio2parquet/schema"
)

const (
	headerColumn      = "header"
	sequenceColumn    = "sequence"
	descriptionColumn = "description"
)

// FormatError reports a malformed row with the 1-based line number of the
// offending input line.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid CSV at line %d: %s", e.Line, e.Msg)
}

// Reader yields records from a CSV table in file order. Like the FASTA
// reader, a *FormatError refers to a single row and the Reader stays usable
// afterwards; IO errors are sticky.
type Reader struct {
	cr     *csv.Reader
	closer io.Closer

	idIdx    int
	seqIdx   int
	descIdx  int
	extras   []string
	extraIdx []int

	err error
}

func Open(path string) (*Reader, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed opening input file")
	}
	r, err := NewReader(fh)
	if err != nil {
		_ = fh.Close()
		return nil, err
	}
	r.closer = fh
	return r, nil
}

func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &FormatError{Line: 1, Msg: "file is empty: no CSV records found"}
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed reading CSV header")
	}

	reader := &Reader{cr: cr, idIdx: -1, seqIdx: -1, descIdx: -1}
	for i, name := range header {
		switch name {
		case headerColumn:
			reader.idIdx = i
		case sequenceColumn:
			reader.seqIdx = i
		case descriptionColumn:
			reader.descIdx = i
		default:
			reader.extras = append(reader.extras, name)
			reader.extraIdx = append(reader.extraIdx, i)
		}
	}
	if reader.idIdx < 0 || reader.seqIdx < 0 {
		return nil, &FormatError{Line: 1, Msg: "missing required columns: header, sequence"}
	}
	reader.cr.FieldsPerRecord = len(header)
	return reader, nil
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ExtraFields returns the names of the columns beyond header, sequence and
// description, in file order.
func (r *Reader) ExtraFields() []string {
	return r.extras
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (schema.Record, error) {
	if r.err != nil {
		return schema.Record{}, r.err
	}

	row, err := r.cr.Read()
	if err == io.EOF {
		return schema.Record{}, io.EOF
	}
	if parseErr, ok := err.(*csv.ParseError); ok {
		// Parse errors refer to a single row. The csv.Reader has consumed
		// the offending line and the stream itself remains readable.
		if errors.Is(parseErr.Err, csv.ErrFieldCount) {
			return schema.Record{}, &FormatError{Line: parseErr.Line, Msg: "row does not match header width"}
		}
		return schema.Record{}, &FormatError{Line: parseErr.Line, Msg: parseErr.Err.Error()}
	}
	if err != nil {
		r.err = errors.Wrap(err, "failed reading input stream")
		return schema.Record{}, r.err
	}

	rec := schema.Record{
		Identifier: row[r.idIdx],
		Sequence:   []byte(row[r.seqIdx]),
	}
	if r.descIdx >= 0 {
		rec.Description = row[r.descIdx]
	}
	if len(r.extras) > 0 {
		rec.Extra = make(map[string]string, len(r.extras))
		for i, name := range r.extras {
			rec.Extra[name] = row[r.extraIdx[i]]
		}
	}
	return rec, nil
}
