package schema

import (
	"os"
	"path"
	"testing"

	"github.com/segmentio/parquet-go"
	"github.com/stretchr/testify/require"
)

func TestRecordSchema(t *testing.T) {
	recordSchema, err := MakeRecordSchema([]string{"taxon", "source"}, CompressionFast)
	require.NoError(t, err)

	file, err := os.Create(path.Join(t.TempDir(), "file.parquet"))
	require.NoError(t, err)
	defer file.Close()

	writer := parquet.NewWriter(file, recordSchema.ParquetSchema())
	defer writer.Close()

	rows := []parquet.Row{
		recordSchema.MakeRow(Record{
			Identifier:  "seq1",
			Description: "fragment one",
			Sequence:    []byte("ACGT"),
			Extra:       map[string]string{"taxon": "E. coli"},
		}),
		recordSchema.MakeRow(Record{
			Identifier: "seq2",
			Sequence:   []byte("TTTTGGGG"),
			Extra:      map[string]string{"source": "assembly"},
		}),
	}
	_, err = writer.WriteRows(rows)
	require.NoError(t, err)
}

func TestRecordSchemaDeterministic(t *testing.T) {
	a, err := MakeRecordSchema([]string{"b", "a", "c"}, CompressionNone)
	require.NoError(t, err)
	b, err := MakeRecordSchema([]string{"c", "b", "a", "a"}, CompressionNone)
	require.NoError(t, err)

	require.Equal(t, a.Columns(), b.Columns())
	require.Equal(t, []string{"id", "description", "sequence", "length", "a", "b", "c"}, a.Columns())
	require.Equal(t, a.ParquetSchema().String(), b.ParquetSchema().String())
}

func TestMakeRecordSchemaShadowedColumns(t *testing.T) {
	_, err := MakeRecordSchema([]string{"taxon", "length", "id"}, CompressionNone)
	require.Error(t, err)

	conflict, ok := err.(*ConflictError)
	require.True(t, ok)
	require.Equal(t, []string{"id", "length"}, conflict.Fields)
}

func TestFit(t *testing.T) {
	recordSchema, err := MakeRecordSchema([]string{"taxon"}, CompressionNone)
	require.NoError(t, err)

	require.NoError(t, recordSchema.Fit(Record{Identifier: "seq1", Sequence: []byte("ACGT")}))
	require.NoError(t, recordSchema.Fit(Record{
		Identifier: "seq2",
		Sequence:   []byte("ACGT"),
		Extra:      map[string]string{"taxon": "E. coli"},
	}))

	err = recordSchema.Fit(Record{
		Identifier: "seq3",
		Sequence:   []byte("ACGT"),
		Extra:      map[string]string{"strain": "K-12", "assembly": "GCF_1"},
	})
	require.Error(t, err)

	conflict, ok := err.(*ConflictError)
	require.True(t, ok)
	require.Equal(t, "seq3", conflict.Identifier)
	require.Equal(t, []string{"assembly", "strain"}, conflict.Fields)
}

func TestMakeRowDerivedLength(t *testing.T) {
	recordSchema, err := MakeRecordSchema(nil, CompressionNone)
	require.NoError(t, err)

	row := recordSchema.MakeRow(Record{Identifier: "seq1", Sequence: []byte("TTTTGGGG")})
	require.Len(t, row, 4)
	require.Equal(t, "seq1", string(row[IdentifierPos].ByteArray()))
	require.True(t, row[DescriptionPos].IsNull())
	require.Equal(t, "TTTTGGGG", string(row[SequencePos].ByteArray()))
	require.Equal(t, int64(8), row[LengthPos].Int64())
}
