package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/segmentio/parquet-go"
	"github.com/segmentio/parquet-go/compress"
	"github.com/segmentio/parquet-go/encoding"
	"golang.org/x/exp/slices"
)

const (
	IdentifierColumn  = "id"
	DescriptionColumn = "description"
	SequenceColumn    = "sequence"
	LengthColumn      = "length"

	IdentifierPos  = 0
	DescriptionPos = 1
	SequencePos    = 2
	LengthPos      = 3

	numBaseColumns = 4
)

// Record is a single sequence record as produced by a reader.
// Immutable once yielded.
type Record struct {
	// Identifier is the first whitespace-delimited field of the header line.
	// Unique within a file by convention, not enforced.
	Identifier string
	// Description is the free-text remainder of the header line, may be empty.
	Description string
	// Sequence holds the concatenated sequence characters.
	Sequence []byte
	// LineWidth is the wrap width of the first sequence line in the source,
	// kept so output can be re-wrapped the same way. Zero when unknown.
	LineWidth int
	// Extra carries additional string fields from tabular sources.
	Extra map[string]string
}

// ConflictError reports a record whose shape does not match an already
// fixed schema.
type ConflictError struct {
	Identifier string
	Fields     []string
}

func (e *ConflictError) Error() string {
	if e.Identifier == "" {
		return fmt.Sprintf("field names collide with fixed columns: %s", strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("record %q has fields not in schema: %s", e.Identifier, strings.Join(e.Fields, ", "))
}

type recordRow struct {
	extras []string
	codec  compress.Codec
}

func newRecordRow(extras []string, codec compress.Codec) *recordRow {
	return &recordRow{extras: extras, codec: codec}
}

func (r recordRow) String() string {
	return fmt.Sprintf("%v", r.extras)
}

func (r recordRow) Type() parquet.Type { return groupType{} }

func (r recordRow) Optional() bool { return false }

func (r recordRow) Repeated() bool { return false }

func (r recordRow) Required() bool { return true }

func (r recordRow) Leaf() bool { return false }

func (r recordRow) Fields() []parquet.Field {
	fields := make([]parquet.Field, numBaseColumns, numBaseColumns+len(r.extras))
	fields[IdentifierPos] = newStringColumn(IdentifierColumn, nil)
	fields[DescriptionPos] = newOptionalStringColumn(DescriptionColumn, nil)
	fields[SequencePos] = newSequenceColumn(SequenceColumn, r.codec)
	fields[LengthPos] = newInt64Column(LengthColumn, r.codec)

	for _, name := range r.extras {
		fields = append(fields, newStringColumn(name, r.codec))
	}
	return fields
}

func (r recordRow) Encoding() encoding.Encoding { return nil }

func (r recordRow) Compression() compress.Codec { return nil }

func (r recordRow) GoType() reflect.Type { return reflect.TypeOf(recordRow{}) }

// RecordSchema is the fixed column schema of one output file. The base
// columns are always id, description, sequence and length, in that order.
// Extra fields sort lexicographically after them. The same input shape
// always produces the same schema.
type RecordSchema struct {
	schema *parquet.Schema
	extras []string
	known  map[string]struct{}
}

// MakeRecordSchema fixes the schema for the given extra fields. An extra
// field named after one of the base columns is rejected with a ConflictError.
func MakeRecordSchema(extraFields []string, compression Compression) (*RecordSchema, error) {
	extras := slices.Clone(extraFields)
	slices.Sort(extras)
	extras = slices.Compact(extras)

	var shadowed []string
	for _, name := range extras {
		switch name {
		case IdentifierColumn, DescriptionColumn, SequenceColumn, LengthColumn:
			shadowed = append(shadowed, name)
		}
	}
	if len(shadowed) > 0 {
		return nil, &ConflictError{Fields: shadowed}
	}

	known := make(map[string]struct{}, len(extras))
	for _, name := range extras {
		known[name] = struct{}{}
	}

	schema := parquet.NewSchema("record", newRecordRow(extras, compression.codec()))
	return &RecordSchema{
		schema: schema,
		extras: extras,
		known:  known,
	}, nil
}

func (s *RecordSchema) ParquetSchema() *parquet.Schema {
	return s.schema
}

// Columns returns all column names in schema order.
func (s *RecordSchema) Columns() []string {
	cols := make([]string, 0, numBaseColumns+len(s.extras))
	cols = append(cols, IdentifierColumn, DescriptionColumn, SequenceColumn, LengthColumn)
	cols = append(cols, s.extras...)
	return cols
}

// Fit reports whether rec matches the fixed schema. Extra fields unknown to
// the schema are returned inside a ConflictError, sorted for determinism.
// The caller decides whether that is fatal or whether the fields are dropped.
func (s *RecordSchema) Fit(rec Record) error {
	var unknown []string
	for name := range rec.Extra {
		if _, found := s.known[name]; !found {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return &ConflictError{Identifier: rec.Identifier, Fields: unknown}
}

// MakeRow builds the parquet row for rec in schema order. The length column
// is derived from the sequence and always equals len(rec.Sequence).
// Fields of rec unknown to the schema are ignored.
func (s *RecordSchema) MakeRow(rec Record) parquet.Row {
	row := make(parquet.Row, numBaseColumns, numBaseColumns+len(s.extras))

	row[IdentifierPos] = parquet.ByteArrayValue([]byte(rec.Identifier)).Level(0, 0, IdentifierPos)
	if rec.Description == "" {
		row[DescriptionPos] = parquet.Value{}.Level(0, 0, DescriptionPos)
	} else {
		row[DescriptionPos] = parquet.ByteArrayValue([]byte(rec.Description)).Level(0, 1, DescriptionPos)
	}
	row[SequencePos] = parquet.ByteArrayValue(rec.Sequence).Level(0, 0, SequencePos)
	row[LengthPos] = parquet.Int64Value(int64(len(rec.Sequence))).Level(0, 0, LengthPos)

	for i, name := range s.extras {
		val := rec.Extra[name]
		colVal := parquet.ByteArrayValue([]byte(val)).Level(0, 0, numBaseColumns+i)
		row = append(row, colVal)
	}

	return row
}
