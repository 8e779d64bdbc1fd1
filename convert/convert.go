// Package convert orchestrates the conversion pipeline. A record source is
// decoded ahead of the writer and serialized in batches against a fixed
// schema. The output file only becomes visible once the conversion finished
// cleanly.
package convert

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mathysgrapotte/bio2parquet/csvin"
	"github.com/mathysgrapotte/bio2parquet/db"
	"github.com/mathysgrapotte/bio2parquet/fasta"
	"github.com/mathysgrapotte/bio2parquet/schema"
)

const tmpFileSuffix = ".tmp"

// Source is a pull-based record stream. Next returns io.EOF after the last
// record.
type Source interface {
	Next() (schema.Record, error)
}

type Options struct {
	// BatchSize is the number of records buffered per row group.
	BatchSize int
	// Compression of the sequence and length columns.
	Compression schema.Compression
	// StrictSchema makes shape conflicts fatal. In lenient mode unknown
	// fields are dropped and counted.
	StrictSchema bool
	// ValidateAlphabet rejects sequences with characters outside Alphabet.
	ValidateAlphabet bool
	// Alphabet names the sequence alphabet, "nucleotide" by default.
	Alphabet string
	// SkipInvalid skips malformed records instead of failing the run.
	SkipInvalid bool
	// ReadAhead is the number of batches decoded ahead of the writer.
	ReadAhead int

	Logger  log.Logger
	Metrics *Metrics
	// Progress is called with the record count of every flushed batch.
	Progress func(n int)
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = db.DefaultBatchSize
	}
	if o.Compression == "" {
		o.Compression = schema.CompressionFast
	}
	if o.Alphabet == "" {
		o.Alphabet = "nucleotide"
	}
	if o.ReadAhead <= 0 {
		o.ReadAhead = 1
	}
	if o.Logger == nil {
		o.Logger = log.NewNopLogger()
	}
	if o.Metrics == nil {
		o.Metrics = NewMetrics(nil)
	}
	return o
}

// ConvertFASTA converts a FASTA file (plain or gzip) into a Parquet file at
// outputPath.
func ConvertFASTA(ctx context.Context, inputPath, outputPath string, opts Options) (*LocalDataset, error) {
	reader, err := fasta.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return Convert(ctx, reader, nil, outputPath, opts)
}

// ConvertCSV converts a CSV sequence table into a Parquet file at
// outputPath. Columns beyond header, sequence and description become extra
// string columns.
func ConvertCSV(ctx context.Context, inputPath, outputPath string, opts Options) (*LocalDataset, error) {
	reader, err := csvin.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return Convert(ctx, reader, reader.ExtraFields(), outputPath, opts)
}

// Convert drains src into a Parquet file at outputPath. The file and its
// metadata sidecar are written to temporary paths and renamed into place on
// success; on any error or cancellation no partial artifact is left behind.
func Convert(ctx context.Context, src Source, extraFields []string, outputPath string, opts Options) (*LocalDataset, error) {
	opts = opts.withDefaults()

	var alphabet *schema.Alphabet
	if opts.ValidateAlphabet {
		var err error
		alphabet, err = schema.AlphabetByName(opts.Alphabet)
		if err != nil {
			return nil, err
		}
	}

	recordSchema, err := schema.MakeRecordSchema(extraFields, opts.Compression)
	if err != nil {
		return nil, err
	}
	metadataPath := strings.TrimSuffix(outputPath, db.DataFileSuffix) + db.MetadataFileSuffix

	tmpData := outputPath + tmpFileSuffix
	tmpMetadata := metadataPath + tmpFileSuffix
	f, err := os.Create(tmpData)
	if err != nil {
		return nil, errors.Wrap(err, "failed creating output file")
	}
	discard := func() {
		_ = f.Close()
		_ = os.Remove(tmpData)
		_ = os.Remove(tmpMetadata)
	}

	writerOpts := []db.WriterOption{db.WithBatchSize(opts.BatchSize)}
	if alphabet != nil {
		writerOpts = append(writerOpts, db.WithAlphabet(alphabet))
	}
	writer := db.NewWriter(f, recordSchema, writerOpts...)

	level.Info(opts.Logger).Log("msg", "starting conversion", "output", outputPath, "batch_size", opts.BatchSize)

	var skipped int64
	g, gctx := errgroup.WithContext(ctx)
	batches := make(chan []schema.Record, opts.ReadAhead)
	g.Go(func() error {
		defer close(batches)
		batch := make([]schema.Record, 0, opts.BatchSize)
		send := func() error {
			if len(batch) == 0 {
				return nil
			}
			select {
			case batches <- batch:
				batch = make([]schema.Record, 0, opts.BatchSize)
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		var lastSkipped string
		for {
			rec, err := src.Next()
			if err == io.EOF {
				return send()
			}
			if err != nil {
				if opts.SkipInvalid && isFormatError(err) {
					// A repeated error means the source is stuck on the
					// same record and skipping cannot make progress.
					if err.Error() == lastSkipped {
						return errors.Wrap(err, "input does not advance past malformed record")
					}
					lastSkipped = err.Error()
					select {
					case <-gctx.Done():
						return gctx.Err()
					default:
					}
					skipped++
					opts.Metrics.RecordsSkipped.Inc()
					level.Warn(opts.Logger).Log("msg", "skipping malformed record", "err", err)
					continue
				}
				return err
			}
			if err := recordSchema.Fit(rec); err != nil {
				if opts.StrictSchema {
					return err
				}
				conflict := err.(*schema.ConflictError)
				for _, field := range conflict.Fields {
					delete(rec.Extra, field)
				}
				level.Warn(opts.Logger).Log("msg", "dropping fields not in schema", "record", rec.Identifier, "err", err)
			}
			batch = append(batch, rec)
			if len(batch) == opts.BatchSize {
				if err := send(); err != nil {
					return err
				}
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case batch, ok := <-batches:
				if !ok {
					return nil
				}
				for _, rec := range batch {
					if err := writer.Write(rec); err != nil {
						return err
					}
				}
				if err := writer.Flush(); err != nil {
					return err
				}
				opts.Metrics.RecordsConverted.Add(float64(len(batch)))
				opts.Metrics.BatchesFlushed.Inc()
				if opts.Progress != nil {
					opts.Progress(len(batch))
				}
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})
	if err := g.Wait(); err != nil {
		discard()
		return nil, err
	}

	if err := writer.Close(); err != nil {
		discard()
		return nil, errors.Wrap(err, "failed closing parquet writer")
	}
	if err := f.Sync(); err != nil {
		discard()
		return nil, errors.Wrap(err, "failed syncing output file")
	}
	if err := f.Close(); err != nil {
		discard()
		return nil, errors.Wrap(err, "failed closing output file")
	}
	if err := db.WriteMetadataFile(tmpData, tmpMetadata); err != nil {
		discard()
		return nil, err
	}
	if err := os.Rename(tmpMetadata, metadataPath); err != nil {
		discard()
		return nil, errors.Wrap(err, "failed finalizing metadata file")
	}
	if err := os.Rename(tmpData, outputPath); err != nil {
		discard()
		_ = os.Remove(metadataPath)
		return nil, errors.Wrap(err, "failed finalizing output file")
	}

	level.Info(opts.Logger).Log("msg", "conversion finished",
		"output", outputPath,
		"records", writer.NumRecords(),
		"batches", writer.NumBatches(),
		"skipped", skipped,
	)

	return &LocalDataset{
		path:         outputPath,
		metadataPath: metadataPath,
		numRecords:   writer.NumRecords(),
		skipped:      skipped,
	}, nil
}

func isFormatError(err error) bool {
	var fastaErr *fasta.FormatError
	var csvErr *csvin.FormatError
	return errors.As(err, &fastaErr) || errors.As(err, &csvErr)
}
