package convert

// Dataset is the handle to a finished conversion artifact.
type Dataset interface {
	// Path is the location of the Parquet file.
	Path() string
	// MetadataPath is the location of the footer sidecar file.
	MetadataPath() string
	// NumRecords is the number of records written.
	NumRecords() int64
	// SkippedRecords is the number of malformed records skipped and
	// reported, zero unless skip mode is enabled.
	SkippedRecords() int64
}

var (
	_ Dataset = (*LocalDataset)(nil)
	_ Dataset = (*UploadedDataset)(nil)
)

type LocalDataset struct {
	path         string
	metadataPath string
	numRecords   int64
	skipped      int64
}

func (d *LocalDataset) Path() string { return d.path }

func (d *LocalDataset) MetadataPath() string { return d.metadataPath }

func (d *LocalDataset) NumRecords() int64 { return d.numRecords }

func (d *LocalDataset) SkippedRecords() int64 { return d.skipped }

// UploadedDataset is a LocalDataset that has also been pushed to a remote
// bucket.
type UploadedDataset struct {
	*LocalDataset
	bucket     string
	remotePath string
}

func NewUploadedDataset(local *LocalDataset, bucket, remotePath string) *UploadedDataset {
	return &UploadedDataset{LocalDataset: local, bucket: bucket, remotePath: remotePath}
}

func (d *UploadedDataset) Bucket() string { return d.bucket }

func (d *UploadedDataset) RemotePath() string { return d.remotePath }
