package csvin

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mathysgrapotte/bio2parquet/schema"
)

func readAll(t *testing.T, r *Reader) []schema.Record {
	t.Helper()
	var records []schema.Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records
		}
		require.NoError(t, err)
		records = append(records, rec)
	}
}

func TestReader(t *testing.T) {
	input := "header,sequence,description,taxon\nseq1,ACGT,fragment one,E. coli\nseq2,TTTTGGGG,,\n"
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []string{"taxon"}, r.ExtraFields())

	records := readAll(t, r)
	require.Len(t, records, 2)
	require.Equal(t, "seq1", records[0].Identifier)
	require.Equal(t, "fragment one", records[0].Description)
	require.Equal(t, "ACGT", string(records[0].Sequence))
	require.Equal(t, map[string]string{"taxon": "E. coli"}, records[0].Extra)
	require.Equal(t, "seq2", records[1].Identifier)
	require.Equal(t, map[string]string{"taxon": ""}, records[1].Extra)
}

func TestReaderMissingRequiredColumns(t *testing.T) {
	_, err := NewReader(strings.NewReader("id,seq\nseq1,ACGT\n"))
	require.Error(t, err)
	formatErr, ok := err.(*FormatError)
	require.True(t, ok)
	require.Equal(t, 1, formatErr.Line)
}

func TestReaderEmptyFile(t *testing.T) {
	_, err := NewReader(strings.NewReader(""))
	require.Error(t, err)
	_, ok := err.(*FormatError)
	require.True(t, ok)
}

func TestReaderMalformedQuotedField(t *testing.T) {
	input := "header,sequence\nseq1,ACGT\nseq2,\"TT\"TT\nseq3,GGGG\n"
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	rec, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "seq1", rec.Identifier)

	_, err = r.Next()
	formatErr, ok := err.(*FormatError)
	require.True(t, ok)
	require.Equal(t, 3, formatErr.Line)

	// The quote error refers to one row, the reader resumes at the next.
	rec, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, "seq3", rec.Identifier)

	_, err = r.Next()
	require.Equal(t, io.EOF, err)
}

func TestReaderRowWidthMismatch(t *testing.T) {
	input := "header,sequence\nseq1,ACGT\nseq2,TTTT,extra\nseq3,GGGG\n"
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	rec, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "seq1", rec.Identifier)

	_, err = r.Next()
	formatErr, ok := err.(*FormatError)
	require.True(t, ok)
	require.Equal(t, 3, formatErr.Line)

	// The reader resumes at the next row.
	rec, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, "seq3", rec.Identifier)

	_, err = r.Next()
	require.Equal(t, io.EOF, err)
}
