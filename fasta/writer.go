package fasta

import (
	"bufio"
	"io"

	"github.com/mathysgrapotte/bio2parquet/schema"
)

const defaultLineWidth = 60

// Write serializes records back to FASTA, wrapping each sequence at the
// record's source line width when known.
func Write(w io.Writer, records []schema.Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := bw.WriteString(">" + rec.Identifier); err != nil {
			return err
		}
		if rec.Description != "" {
			if _, err := bw.WriteString(" " + rec.Description); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}

		width := rec.LineWidth
		if width <= 0 {
			width = defaultLineWidth
		}
		for off := 0; off < len(rec.Sequence); off += width {
			end := off + width
			if end > len(rec.Sequence) {
				end = len(rec.Sequence)
			}
			if _, err := bw.Write(rec.Sequence[off:end]); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
