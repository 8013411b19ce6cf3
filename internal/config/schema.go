package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps schema violations.
var ErrInvalidConfig = errors.New("config: invalid")

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("hyperworm.schema.json", hyperWormSchemaJSON)
	})
	return schema, schemaErr
}

// Validate checks a YAML document against the embedded schema.
func Validate(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("config: compile schema: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("config: parse: %w", err)
	}
	if doc == nil {
		return nil // empty file keeps every default
	}

	// The validator expects encoding/json value types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config: convert: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("config: convert: %w", err)
	}

	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
