package groups

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	datasetVersionV1 = "1"
	// DatasetVersion exposes the current dataset format version for tooling.
	DatasetVersion = datasetVersionV1
)

// Dataset is the YAML document listing customer groups.
type Dataset struct {
	Version string        `json:"version" yaml:"version"`
	Groups  []GroupRecord `json:"groups" yaml:"groups"`
	Source  string        `json:"-" yaml:"-"`
}

// ReadDataset loads a dataset file from disk.
func ReadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("groups: open dataset %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeDataset(f)
	if err != nil {
		return nil, fmt.Errorf("groups: decode dataset %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeDataset reads a dataset from any reader. Unknown fields are rejected.
// Integrity faults such as orphans are left for BuildForest to report.
func DecodeDataset(r io.Reader) (*Dataset, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc Dataset
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("groups: dataset is empty")
		}
		return nil, fmt.Errorf("groups: parse dataset: %w", err)
	}
	if doc.Version == "" {
		doc.Version = datasetVersionV1
	}
	if doc.Version != datasetVersionV1 {
		return nil, fmt.Errorf("groups: unsupported dataset version %q", doc.Version)
	}
	return &doc, nil
}

// EncodeDataset writes records as a version 1 dataset.
func EncodeDataset(w io.Writer, records []GroupRecord) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(Dataset{Version: datasetVersionV1, Groups: records}); err != nil {
		return fmt.Errorf("groups: encode dataset: %w", err)
	}
	return encoder.Close()
}

// FileSource reads a YAML dataset from disk on every fetch, optionally
// validating it against the dataset schema first.
type FileSource struct {
	Path      string
	Validator *DatasetValidator
}

// FetchAll reads and decodes the file.
func (s FileSource) FetchAll(context.Context) ([]GroupRecord, error) {
	doc, err := ReadDataset(s.Path)
	if err != nil {
		return nil, err
	}
	if s.Validator != nil {
		if err := s.Validator.Validate(doc); err != nil {
			return nil, err
		}
	}
	return doc.Groups, nil
}
