package relcls

import (
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ReadParquet reads the records of a Parquet file with "text" and "label" string columns, as
// exported by the datasets library.
func ReadParquet(path string) ([]Record, error) {
	records, err := parquet.ReadFile[Record](path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read parquet records from %q", path)
	}
	klog.V(1).Infof("relcls: read %d records from %q", len(records), path)
	return records, nil
}

// WriteParquet writes records to path, overwriting it.
func WriteParquet(path string, records []Record) error {
	if err := parquet.WriteFile(path, records); err != nil {
		return errors.Wrapf(err, "failed to write parquet records to %q", path)
	}
	return nil
}

// TextsLabelsParquet is TextsLabels for Parquet files.
func TextsLabelsParquet(path string) (texts, labels []string, err error) {
	records, err := ReadParquet(path)
	if err != nil {
		return nil, nil, err
	}
	return split(records)
}
