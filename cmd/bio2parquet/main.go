package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/mathysgrapotte/bio2parquet/convert"
	"github.com/mathysgrapotte/bio2parquet/db"
	"github.com/mathysgrapotte/bio2parquet/schema"
	"github.com/mathysgrapotte/bio2parquet/storage"
)

var fastaExtensions = []string{".fasta", ".fa", ".fna", ".fasta.gz", ".fa.gz", ".fna.gz"}

type Options struct {
	// Input is the path to the file to convert.
	Input string
	// Output is the path of the Parquet file, derived from Input when empty.
	Output string
	// BatchSize is the number of records per row group.
	BatchSize int
	// Compression of the sequence and length columns.
	Compression string
	// Strict makes schema shape conflicts fatal.
	Strict bool
	// ValidateAlphabet rejects sequences outside Alphabet.
	ValidateAlphabet bool
	Alphabet         string
	// SkipInvalid skips malformed records instead of failing the run.
	SkipInvalid bool
	// UploadConfig is a bucket config file; when set the dataset is uploaded.
	UploadConfig string
	UploadPrefix string
	// Debug exposes metrics on localhost:8080.
	Debug bool
}

func (o *Options) BindFlags(cmd *kingpin.CmdClause) {
	cmd.Arg("input", "Path to the input file.").Required().StringVar(&o.Input)
	cmd.Flag("output", "Path to the output Parquet file. Defaults to the input path with a .parquet extension.").
		Short('o').StringVar(&o.Output)
	cmd.Flag("batch-size", "Number of records per row group.").
		Default("1000").IntVar(&o.BatchSize)
	cmd.Flag("compression", "Compression of sequence data: none, fast or high.").
		Default("fast").EnumVar(&o.Compression, "none", "fast", "high")
	cmd.Flag("strict", "Fail on schema shape conflicts instead of dropping unknown fields.").
		BoolVar(&o.Strict)
	cmd.Flag("validate-alphabet", "Reject sequences with characters outside the alphabet.").
		BoolVar(&o.ValidateAlphabet)
	cmd.Flag("alphabet", "Sequence alphabet: nucleotide or protein.").
		Default("nucleotide").EnumVar(&o.Alphabet, "nucleotide", "dna", "rna", "protein", "amino-acid")
	cmd.Flag("skip-invalid", "Skip malformed records and report them instead of failing.").
		BoolVar(&o.SkipInvalid)
	cmd.Flag("upload-config", "Bucket config file. When set, the dataset is uploaded after conversion.").
		StringVar(&o.UploadConfig)
	cmd.Flag("upload-prefix", "Remote path prefix for uploaded files.").
		StringVar(&o.UploadPrefix)
	cmd.Flag("debug", "Expose metrics on localhost:8080.").BoolVar(&o.Debug)
}

func main() {
	logger := log.With(
		log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr)),
		"ts", log.DefaultTimestampUTC,
	)

	app := kingpin.New("bio2parquet", "Convert bioinformatics files to Parquet.")

	fastaOpts := &Options{}
	fastaCmd := app.Command("fasta", "Convert a FASTA file (.fasta, .fa, .fna, optionally gzip compressed).")
	fastaOpts.BindFlags(fastaCmd)

	csvOpts := &Options{}
	csvCmd := app.Command("csv", "Convert a CSV sequence table with header and sequence columns.")
	csvOpts.BindFlags(csvCmd)

	inspectCmd := app.Command("inspect", "Print row count and schema of a converted dataset.")
	inspectPath := inspectCmd.Arg("file", "Path to a .metadata sidecar file.").Required().String()

	var err error
	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case fastaCmd.FullCommand():
		err = runConvert(logger, fastaOpts, convert.ConvertFASTA, fastaExtensions)
	case csvCmd.FullCommand():
		err = runConvert(logger, csvOpts, convert.ConvertCSV, []string{".csv"})
	case inspectCmd.FullCommand():
		err = runInspect(*inspectPath)
	}
	if err != nil {
		level.Error(logger).Log("err", err)
		os.Exit(1)
	}
}

type convertFunc func(ctx context.Context, inputPath, outputPath string, opts convert.Options) (*convert.LocalDataset, error)

func runConvert(logger log.Logger, opts *Options, fn convertFunc, extensions []string) error {
	if !hasExtension(opts.Input, extensions) {
		return fmt.Errorf("input file must have one of the extensions: %s", strings.Join(extensions, ", "))
	}
	if opts.Output == "" {
		opts.Output = defaultOutput(opts.Input)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *convert.Metrics
	if opts.Debug {
		metrics = convert.NewMetrics(prometheus.DefaultRegisterer)
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			level.Error(logger).Log("err", http.ListenAndServe("localhost:8080", nil))
		}()
	}

	bar := progressbar.Default(-1, "converting records")
	convertOpts := convert.Options{
		BatchSize:        opts.BatchSize,
		Compression:      schema.Compression(opts.Compression),
		StrictSchema:     opts.Strict,
		ValidateAlphabet: opts.ValidateAlphabet,
		Alphabet:         opts.Alphabet,
		SkipInvalid:      opts.SkipInvalid,
		Logger:           logger,
		Metrics:          metrics,
		Progress: func(n int) {
			_ = bar.Add(n)
		},
	}

	ds, err := fn(ctx, opts.Input, opts.Output, convertOpts)
	if err != nil {
		return err
	}
	_ = bar.Finish()
	level.Info(logger).Log("msg", "wrote dataset", "path", ds.Path(), "records", ds.NumRecords(), "skipped", ds.SkippedRecords())

	if opts.UploadConfig == "" {
		return nil
	}

	cfg, err := storage.LoadBucketConfig(opts.UploadConfig)
	if err != nil {
		return err
	}
	bucket, err := storage.NewBucket(ctx, logger, cfg)
	if err != nil {
		return err
	}
	uploaded, err := storage.NewUploader(logger, bucket).Upload(ctx, ds, opts.UploadPrefix)
	if err != nil {
		return err
	}
	level.Info(logger).Log("msg", "uploaded dataset", "bucket", uploaded.Bucket(), "remote", uploaded.RemotePath())
	return nil
}

func runInspect(path string) error {
	meta, err := db.ReadMetadataFile(path)
	if err != nil {
		return err
	}
	fmt.Printf("rows: %d\n", meta.NumRows)
	fmt.Printf("row groups: %d\n", len(meta.RowGroups))
	fmt.Println("columns:")
	for i := 0; i < meta.Schema.NumColumns(); i++ {
		col := meta.Schema.Column(i)
		fmt.Printf("  %s (%s, arrow: %s)\n", col.Name(), col.PhysicalType(), schema.ArrowType(col.Name()))
	}
	return nil
}

func hasExtension(path string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func defaultOutput(input string) string {
	out := strings.TrimSuffix(input, ".gz")
	if i := strings.LastIndex(out, "."); i > strings.LastIndex(out, "/") {
		out = out[:i]
	}
	return out + db.DataFileSuffix
}
