package checklist

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"
)

// schemaJSON describes a checklist as submitted by clients: an object of
// snake_case item keys to booleans.
const schemaJSON = `{
	"type": "object",
	"propertyNames": { "pattern": "^[a-z0-9_]+$" },
	"additionalProperties": { "type": "boolean" }
}`

var itemKeyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// SchemaError lists every reason a submitted checklist was rejected.
type SchemaError struct {
	Field    string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s is invalid: %s", e.Field, strings.Join(e.Problems, "; "))
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(schemaJSON), rs); err != nil {
			schemaErr = fmt.Errorf("parse checklist schema: %w", err)
			return
		}
		schema = rs
	})
	return schema, schemaErr
}

// Validate checks a submitted checklist document. field names the request
// field in the returned *SchemaError.
func Validate(ctx context.Context, field string, raw []byte) error {
	s, err := loadSchema()
	if err != nil {
		return err
	}

	if !json.Valid(raw) {
		return &SchemaError{Field: field, Problems: []string{"not valid JSON"}}
	}

	verrs, err := s.ValidateBytes(ctx, raw)
	if err != nil {
		return fmt.Errorf("validate %s: %w", field, err)
	}
	if len(verrs) == 0 {
		return checkItems(field, raw)
	}

	problems := make([]string, 0, len(verrs))
	for _, v := range verrs {
		if v.PropertyPath != "" && v.PropertyPath != "/" {
			problems = append(problems, v.PropertyPath+": "+v.Message)
			continue
		}
		problems = append(problems, v.Message)
	}
	return &SchemaError{Field: field, Problems: problems}
}

// checkItems enforces the item rules directly, whatever keywords the schema
// library honours: every key snake_case, every value a JSON boolean.
func checkItems(field string, raw []byte) error {
	var items map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return &SchemaError{Field: field, Problems: []string{"must be an object"}}
	}

	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var problems []string
	for _, key := range keys {
		if !itemKeyPattern.MatchString(key) {
			problems = append(problems, fmt.Sprintf("/%s: key must match %s", key, itemKeyPattern))
		}
		if v := strings.TrimSpace(string(items[key])); v != "true" && v != "false" {
			problems = append(problems, fmt.Sprintf("/%s: must be a boolean", key))
		}
	}
	if len(problems) > 0 {
		return &SchemaError{Field: field, Problems: problems}
	}
	return nil
}
