package db

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/segmentio/parquet-go"

	"github.com/mathysgrapotte/bio2parquet/schema"
)

const readBatchSize = 128

// OpenFile opens a Parquet file produced by the Writer.
func OpenFile(path string) (*parquet.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed opening file "+path)
	}
	stat, err := file.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "failed getting file stats")
	}
	return parquet.OpenFile(file, stat.Size())
}

// ReadFile decodes all records of a Parquet file in row order. It is the
// inverse of the Writer and backs round-trip verification.
func ReadFile(path string) ([]schema.Record, error) {
	pqFile, err := OpenFile(path)
	if err != nil {
		return nil, err
	}

	columns := pqFile.Schema().Columns()
	records := make([]schema.Record, 0, pqFile.NumRows())
	for _, rowGroup := range pqFile.RowGroups() {
		rowGroupRows := rowGroup.Rows()
		for {
			rows := make([]parquet.Row, readBatchSize)
			n, err := rowGroupRows.ReadRows(rows)
			if err != nil && err != io.EOF {
				_ = rowGroupRows.Close()
				return nil, errors.Wrap(err, "failed reading rows")
			}
			for _, row := range rows[:n] {
				records = append(records, makeRecord(columns, row))
			}
			if err == io.EOF || n == 0 {
				break
			}
		}
		if err := rowGroupRows.Close(); err != nil {
			return nil, errors.Wrap(err, "failed closing row reader")
		}
	}
	return records, nil
}

func makeRecord(columns [][]string, row parquet.Row) schema.Record {
	var rec schema.Record
	for _, val := range row {
		name := columns[val.Column()][0]
		switch name {
		case schema.IdentifierColumn:
			rec.Identifier = string(val.ByteArray())
		case schema.DescriptionColumn:
			if !val.IsNull() {
				rec.Description = string(val.ByteArray())
			}
		case schema.SequenceColumn:
			rec.Sequence = append([]byte(nil), val.ByteArray()...)
		case schema.LengthColumn:
			// derived from sequence, nothing to restore
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[name] = string(val.ByteArray())
		}
	}
	return rec
}
