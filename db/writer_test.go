package db_test

import (
	"fmt"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mathysgrapotte/bio2parquet/db"
	"github.com/mathysgrapotte/bio2parquet/schema"
)

func testRecords(n int) []schema.Record {
	records := make([]schema.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, schema.Record{
			Identifier:  fmt.Sprintf("seq%d", i),
			Description: fmt.Sprintf("record %d", i),
			Sequence:    []byte("ACGTACGTAC"),
		})
	}
	return records
}

func createParquetFile(t testing.TB, records []schema.Record, opts ...db.WriterOption) string {
	t.Helper()
	fpath := path.Join(t.TempDir(), "records.parquet")
	f, err := os.Create(fpath)
	require.NoError(t, err)
	defer f.Close()

	recordSchema, err := schema.MakeRecordSchema(nil, schema.CompressionFast)
	require.NoError(t, err)

	writer := db.NewWriter(f, recordSchema, opts...)
	for _, rec := range records {
		require.NoError(t, writer.Write(rec))
	}
	require.NoError(t, writer.Close())
	return fpath
}

func TestWriterRoundTrip(t *testing.T) {
	records := []schema.Record{
		{Identifier: "seq1", Description: "desc1", Sequence: []byte("ACGT")},
		{Identifier: "seq2", Sequence: []byte("TTTTGGGG")},
		{Identifier: "seq1", Sequence: []byte("ACGT")}, // duplicate ids are allowed
	}
	fpath := createParquetFile(t, records)

	got, err := db.ReadFile(fpath)
	require.NoError(t, err)
	require.Len(t, got, len(records))
	for i, rec := range records {
		require.Equal(t, rec.Identifier, got[i].Identifier)
		require.Equal(t, rec.Description, got[i].Description)
		require.Equal(t, rec.Sequence, got[i].Sequence)
	}
}

func TestWriterBatches(t *testing.T) {
	records := testRecords(25)
	fpath := createParquetFile(t, records, db.WithBatchSize(10))

	pqFile, err := db.OpenFile(fpath)
	require.NoError(t, err)
	require.Equal(t, int64(25), pqFile.NumRows())
	require.Len(t, pqFile.RowGroups(), 3)

	// Batch size must not change the logical content.
	smallBatches, err := db.ReadFile(fpath)
	require.NoError(t, err)
	oneBatch, err := db.ReadFile(createParquetFile(t, records, db.WithBatchSize(100)))
	require.NoError(t, err)
	require.Equal(t, smallBatches, oneBatch)
}

func TestWriterEmpty(t *testing.T) {
	fpath := createParquetFile(t, nil)

	pqFile, err := db.OpenFile(fpath)
	require.NoError(t, err)
	require.Equal(t, int64(0), pqFile.NumRows())

	got, err := db.ReadFile(fpath)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestWriterAlphabetValidation(t *testing.T) {
	fpath := path.Join(t.TempDir(), "records.parquet")
	f, err := os.Create(fpath)
	require.NoError(t, err)
	defer f.Close()

	recordSchema, err := schema.MakeRecordSchema(nil, schema.CompressionNone)
	require.NoError(t, err)

	writer := db.NewWriter(f, recordSchema, db.WithAlphabet(schema.Nucleotide()))
	require.NoError(t, writer.Write(schema.Record{Identifier: "seq1", Sequence: []byte("ACGT")}))

	err = writer.Write(schema.Record{Identifier: "seq2", Sequence: []byte("MKVLAT")})
	require.Error(t, err)
	serErr, ok := err.(*db.SerializationError)
	require.True(t, ok)
	require.Equal(t, "seq2", serErr.Identifier)
}

func TestMetadataFile(t *testing.T) {
	fpath := createParquetFile(t, testRecords(5))
	metaPath := fpath + db.MetadataFileSuffix

	require.NoError(t, db.WriteMetadataFile(fpath, metaPath))

	meta, err := db.ReadMetadataFile(metaPath)
	require.NoError(t, err)
	require.Equal(t, int64(5), meta.NumRows)
}
