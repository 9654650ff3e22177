// Package validation checks user-supplied YAML configuration files against embedded JSON schemas
// before they are parsed, so structural mistakes are reported with their location.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Embedded schema names
const (
	SchemaCropCatalog      = "crop_catalog.schema.json"
	SchemaSnapshotFixtures = "snapshot_fixtures.schema.json"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ErrSchemaViolation is returned when a document does not match its schema
var ErrSchemaViolation = errors.New("schema validation failed")

// SchemaValidator validates documents against the embedded schemas
type SchemaValidator interface {
	ValidateFile(dataPath, schemaName string) error
	ValidateYAML(data []byte, schemaName string) error
}

type validator struct {
	mu       sync.Mutex
	compiler *jsonschema.Compiler
	schemas  map[string]*jsonschema.Schema
}

// NewSchemaValidator creates a validator; compiled schemas are cached
func NewSchemaValidator() SchemaValidator {
	return &validator{
		compiler: jsonschema.NewCompiler(),
		schemas:  make(map[string]*jsonschema.Schema),
	}
}

var (
	defaultOnce      sync.Once
	defaultValidator SchemaValidator
)

// Default returns a process-wide validator
func Default() SchemaValidator {
	defaultOnce.Do(func() { defaultValidator = NewSchemaValidator() })
	return defaultValidator
}

// ValidateFile validates a YAML (or JSON) file against a schema
func (v *validator) ValidateFile(dataPath, schemaName string) error {
	data, err := os.ReadFile(dataPath)
	if err != nil {
		return fmt.Errorf("failed to read data file %s: %w", dataPath, err)
	}
	return v.ValidateYAML(data, schemaName)
}

// ValidateYAML validates a YAML document against a schema.
// JSON is valid YAML, so JSON documents are accepted too.
func (v *validator) ValidateYAML(data []byte, schemaName string) error {
	schema, err := v.loadSchema(schemaName)
	if err != nil {
		return fmt.Errorf("failed to load schema %s: %w", schemaName, err)
	}

	instance, err := toJSONValue(data)
	if err != nil {
		return err
	}

	if err := schema.Validate(instance); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// toJSONValue decodes YAML and re-reads it through the JSON decoder the schema library expects.
// YAML timestamps become RFC 3339 strings on the way.
func toJSONValue(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML data: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML data: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}

func (v *validator) loadSchema(name string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if schema, ok := v.schemas[name]; ok {
		return schema, nil
	}

	schemaData, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("unknown schema: %w", err)
	}

	schemaJSON, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	if err := v.compiler.AddResource(name, schemaJSON); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := v.compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	v.schemas[name] = schema
	return schema, nil
}

// formatValidationError lists every failing location, one per line
func formatValidationError(err error) error {
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		var lines []string
		collectErrors(validationErr, &lines)
		return fmt.Errorf("%w:\n%s", ErrSchemaViolation, strings.Join(lines, "\n"))
	}
	return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
}

func collectErrors(err *jsonschema.ValidationError, lines *[]string) {
	// leaf errors carry the useful detail; parents only say "doesn't validate"
	if len(err.Causes) == 0 {
		*lines = append(*lines, formatError(err))
	}
	for _, cause := range err.Causes {
		collectErrors(cause, lines)
	}
}

func formatError(err *jsonschema.ValidationError) string {
	location := "/" + strings.Join(err.InstanceLocation, "/")
	if len(err.InstanceLocation) == 0 {
		location = "(root)"
	}

	keywords := ""
	if err.ErrorKind != nil {
		keywords = strings.Join(err.ErrorKind.KeywordPath(), ".")
	}
	if keywords == "" {
		return fmt.Sprintf("  - at %s: validation failed", location)
	}
	return fmt.Sprintf("  - at %s: %s validation failed", location, keywords)
}
