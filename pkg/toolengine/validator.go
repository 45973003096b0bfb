package toolengine

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaValidator checks arguments and outputs against a tool's declared
// JSON schemas. A tool without a schema passes trivially.
type SchemaValidator struct{}

// ValidateInput checks the arguments against the tool's input schema. It
// must be called before any backend work: a violation here means the
// backend was never reached.
func (v *SchemaValidator) ValidateInput(tool *ToolDefinition, arguments map[string]interface{}) error {
	if tool.InputSchema == nil {
		return nil
	}
	if arguments == nil {
		arguments = map[string]interface{}{}
	}
	if err := v.validate(tool.InputSchema, arguments); err != nil {
		return fmt.Errorf("%w: input %v", ErrValidation, err)
	}
	return nil
}

// ValidateOutput checks the produced output against the tool's output
// schema. The backend call has already happened at this point; a violation
// is still reported as a failed execution.
func (v *SchemaValidator) ValidateOutput(tool *ToolDefinition, output interface{}) error {
	if tool.OutputSchema == nil {
		return nil
	}
	if err := v.validate(tool.OutputSchema, output); err != nil {
		return fmt.Errorf("%w: output %v", ErrValidation, err)
	}
	return nil
}

func (v *SchemaValidator) validate(schemaMap map[string]interface{}, instance interface{}) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
	if err != nil {
		return fmt.Errorf("invalid schema: %v", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(instance))
	if err != nil {
		return err
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("validation errors: %s", strings.Join(details, "; "))
	}

	return nil
}
