package db

import (
	"os"

	"github.com/apache/arrow/go/v10/parquet/file"
	"github.com/apache/arrow/go/v10/parquet/metadata"
	"github.com/pkg/errors"
)

// WriteMetadataFile extracts the Parquet footer of dataPath into a sidecar
// file, so the file's schema and row counts can be inspected and shipped
// without touching the data file.
func WriteMetadataFile(dataPath, metadataPath string) error {
	f, err := os.Open(dataPath)
	if err != nil {
		return errors.Wrap(err, "failed opening data file")
	}
	defer f.Close()

	pqReader, err := file.NewParquetReader(f)
	if err != nil {
		return errors.Wrap(err, "failed reading parquet footer")
	}
	defer pqReader.Close()

	metaFile, err := os.Create(metadataPath)
	if err != nil {
		return errors.Wrap(err, "failed creating metadata file")
	}
	defer metaFile.Close()

	_, err = pqReader.MetaData().WriteTo(metaFile, nil)
	return err
}

func ReadMetadataFile(metadataPath string) (*metadata.FileMetaData, error) {
	metadataBytes, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed reading metadata file "+metadataPath)
	}
	return metadata.NewFileMetaData(metadataBytes, nil)
}
