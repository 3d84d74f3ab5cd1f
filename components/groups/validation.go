package groups

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const datasetSchemaName = "customer-groups.schema.json"

const datasetSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "groups"],
  "properties": {
    "version": {"const": "1"},
    "groups": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "customer_count", "discount_percent"],
        "properties": {
          "id": {"type": "integer"},
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "customer_count": {"type": "integer", "minimum": 0},
          "discount_percent": {"type": "integer", "minimum": 0, "maximum": 100},
          "benefits": {"type": "array", "items": {"type": "string", "minLength": 1}},
          "color_tag": {"enum": ["warning", "primary", "secondary", "success", "info"]},
          "parent_id": {"type": ["integer", "null"]}
        }
      }
    }
  }
}`

// DatasetValidator checks datasets against the dataset JSON schema.
type DatasetValidator struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// NewDatasetValidator builds a validator. The schema is compiled on first use.
func NewDatasetValidator() *DatasetValidator {
	return &DatasetValidator{}
}

// Validate reports schema violations such as negative counts or unknown colors.
func (v *DatasetValidator) Validate(doc *Dataset) error {
	if doc == nil {
		return fmt.Errorf("groups: dataset is nil")
	}
	schema, err := v.compiled()
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("groups: marshal dataset: %w", err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("groups: normalize dataset: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("groups: dataset %s failed validation: %w", doc.sourceName(), err)
	}
	return nil
}

// Check runs schema validation followed by the integrity checks BuildForest
// performs, returning the integrity report alongside any schema error.
func (v *DatasetValidator) Check(doc *Dataset) (BuildReport, error) {
	if err := v.Validate(doc); err != nil {
		return BuildReport{}, err
	}
	return BuildForest(doc.Groups).Report, nil
}

func (v *DatasetValidator) compiled() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(datasetSchemaName, strings.NewReader(datasetSchema)); err != nil {
			v.err = fmt.Errorf("groups: load dataset schema: %w", err)
			return
		}
		v.schema, v.err = compiler.Compile(datasetSchemaName)
		if v.err != nil {
			v.err = fmt.Errorf("groups: compile dataset schema: %w", v.err)
		}
	})
	return v.schema, v.err
}

func (doc *Dataset) sourceName() string {
	if doc.Source != "" {
		return doc.Source
	}
	return "<inline>"
}
