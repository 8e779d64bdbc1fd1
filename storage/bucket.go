package storage

import (
	"context"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"github.com/thanos-io/objstore"
	"github.com/thanos-io/objstore/providers/filesystem"
	"github.com/thanos-io/objstore/providers/gcs"
	"gopkg.in/yaml.v3"
)

type FilesystemConfig struct {
	Directory string `yaml:"directory"`
}

type GCSConfig struct {
	Bucket string `yaml:"bucket"`
}

// BucketConfig selects and configures the upload destination. Credentials
// are taken from the environment by the underlying provider.
type BucketConfig struct {
	Type       string           `yaml:"type"`
	Filesystem FilesystemConfig `yaml:"filesystem"`
	GCS        GCSConfig        `yaml:"gcs"`
}

func LoadBucketConfig(path string) (*BucketConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed reading bucket config")
	}
	cfg := &BucketConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed parsing bucket config")
	}
	return cfg, nil
}

// NewBucket builds the objstore bucket described by cfg.
func NewBucket(ctx context.Context, logger log.Logger, cfg *BucketConfig) (objstore.Bucket, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	switch cfg.Type {
	case "filesystem":
		return filesystem.NewBucket(cfg.Filesystem.Directory)
	case "gcs":
		gcsConf, err := yaml.Marshal(gcs.Config{Bucket: cfg.GCS.Bucket})
		if err != nil {
			return nil, err
		}
		return gcs.NewBucket(ctx, logger, gcsConf, "bio2parquet")
	default:
		return nil, errors.Errorf("unsupported bucket type %q", cfg.Type)
	}
}
