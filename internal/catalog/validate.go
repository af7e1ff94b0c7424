package catalog

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaCUE string

// SchemaError reports a catalog file that failed CUE schema validation.
type SchemaError struct {
	File    string
	Details string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("catalog %s does not match schema:\n%s", e.File, e.Details)
}

// Validate checks a YAML catalog document against the embedded CUE schema.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
func Validate(filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return &SchemaError{File: filename, Details: cueerrors.Details(err, nil)}
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return &SchemaError{File: filename, Details: cueerrors.Details(err, nil)}
	}

	if err := schema.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{File: filename, Details: cueerrors.Details(err, nil)}
	}
	return nil
}
