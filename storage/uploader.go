package storage

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	"github.com/thanos-io/objstore"

	"github.com/mathysgrapotte/bio2parquet/convert"
)

// Uploader pushes finished datasets to an object-storage bucket. It only
// ever sees finalized local artifacts, never partial output.
type Uploader struct {
	logger log.Logger
	bucket objstore.Bucket
}

func NewUploader(logger log.Logger, bucket objstore.Bucket) *Uploader {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Uploader{
		logger: logger,
		bucket: bucket,
	}
}

// Upload copies the dataset's Parquet file and metadata sidecar under
// remotePrefix, keeping their base names.
func (u *Uploader) Upload(ctx context.Context, ds *convert.LocalDataset, remotePrefix string) (*convert.UploadedDataset, error) {
	files := []string{
		ds.Path(),
		ds.MetadataPath(),
	}
	for _, localPath := range files {
		f, err := os.Open(localPath)
		if err != nil {
			return nil, errors.Wrap(err, "failed opening "+localPath)
		}

		remotePath := path.Join(remotePrefix, filepath.Base(localPath))
		level.Info(u.logger).Log("msg", "uploading file", "local", localPath, "remote", remotePath)
		if err := u.bucket.Upload(ctx, remotePath, f); err != nil {
			_ = f.Close()
			return nil, errors.Wrap(err, "failed uploading "+remotePath)
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
	}

	remotePath := path.Join(remotePrefix, filepath.Base(ds.Path()))
	return convert.NewUploadedDataset(ds, u.bucket.Name(), remotePath), nil
}
