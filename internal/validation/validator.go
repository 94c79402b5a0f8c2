// Package validation checks request bodies against the JSON schemas of the
// manager and fog node APIs before they are decoded.
package validation

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"gitlab.com/fog-offload.net/internal/domain"
	"gitlab.com/fog-offload.net/internal/static/errs"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Kind names a request body schema
type Kind string

const (
	KindTaskRequest  Kind = "task_request"
	KindWorkerTask   Kind = "worker_task"
	KindStatusRecord Kind = "status_record"
)

var kinds = []Kind{KindTaskRequest, KindWorkerTask, KindStatusRecord}

// Validator holds the compiled schemas
type Validator struct {
	schemas map[Kind]*jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	schemas := make(map[Kind]*jsonschema.Schema, len(kinds))
	for _, kind := range kinds {
		name := string(kind) + ".json"
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		schemas[kind], err = jsonschema.CompileString(name, string(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
	}
	return &Validator{schemas: schemas}, nil
}

// Validate rejects a body that is not JSON or does not match the schema
func (v *Validator) Validate(kind Kind, body []byte) error {
	schema, ok := v.schemas[kind]
	if !ok {
		return fmt.Errorf("unknown schema %q", kind)
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errs.ErrMalformedRequest, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrMalformedRequest, err)
	}
	return nil
}

// DecodeTask validates and decodes a task body. kind selects the manager or
// fog node schema.
func (v *Validator) DecodeTask(kind Kind, body []byte) (domain.TaskRequest, error) {
	var task domain.TaskRequest
	if err := v.Validate(kind, body); err != nil {
		return task, err
	}
	if err := json.Unmarshal(body, &task); err != nil {
		return task, fmt.Errorf("%w: %v", errs.ErrMalformedRequest, err)
	}
	return task, nil
}

// DecodeStatus validates and decodes a status record body
func (v *Validator) DecodeStatus(body []byte) (domain.StatusRecord, error) {
	var record domain.StatusRecord
	if err := v.Validate(KindStatusRecord, body); err != nil {
		return record, err
	}
	if err := json.Unmarshal(body, &record); err != nil {
		return record, fmt.Errorf("%w: %v", errs.ErrMalformedRequest, err)
	}
	return record, nil
}
