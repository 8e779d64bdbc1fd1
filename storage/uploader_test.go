package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thanos-io/objstore/providers/filesystem"

	"github.com/mathysgrapotte/bio2parquet/convert"
	"github.com/mathysgrapotte/bio2parquet/storage"
)

func TestUploader(t *testing.T) {
	inputDir := t.TempDir()
	input := filepath.Join(inputDir, "input.fasta")
	require.NoError(t, os.WriteFile(input, []byte(">seq1\nACGT\n"), 0o644))

	output := filepath.Join(t.TempDir(), "out.parquet")
	ds, err := convert.ConvertFASTA(context.Background(), input, output, convert.Options{})
	require.NoError(t, err)

	bucketDir := t.TempDir()
	bucket, err := filesystem.NewBucket(bucketDir)
	require.NoError(t, err)

	uploader := storage.NewUploader(nil, bucket)
	uploaded, err := uploader.Upload(context.Background(), ds, "datasets/test")
	require.NoError(t, err)
	require.Equal(t, "datasets/test/out.parquet", uploaded.RemotePath())
	require.Equal(t, int64(1), uploaded.NumRecords())

	for _, name := range []string{"out.parquet", "out.metadata"} {
		stat, err := os.Stat(filepath.Join(bucketDir, "datasets", "test", name))
		require.NoError(t, err)
		require.NotZero(t, stat.Size())
	}
}

func TestLoadBucketConfig(t *testing.T) {
	bucketDir := t.TempDir()
	path := filepath.Join(t.TempDir(), "bucket.yaml")
	confContent := "type: filesystem\nfilesystem:\n  directory: " + bucketDir + "\n"
	require.NoError(t, os.WriteFile(path, []byte(confContent), 0o644))

	cfg, err := storage.LoadBucketConfig(path)
	require.NoError(t, err)
	require.Equal(t, "filesystem", cfg.Type)
	require.Equal(t, bucketDir, cfg.Filesystem.Directory)

	bucket, err := storage.NewBucket(context.Background(), nil, cfg)
	require.NoError(t, err)
	require.NotNil(t, bucket)
}

func TestNewBucketUnsupportedType(t *testing.T) {
	_, err := storage.NewBucket(context.Background(), nil, &storage.BucketConfig{Type: "ftp"})
	require.Error(t, err)
}
