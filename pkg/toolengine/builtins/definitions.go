package builtins

import "github.com/harun/toolbridge/pkg/toolengine"

// Definitions returns ready-to-execute ToolDefinitions for the builtins,
// with input and output schemas. A registry layer typically seeds its
// catalog from these.
func Definitions() []toolengine.ToolDefinition {
	textInput := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{"type": "string", "description": "The text to operate on"},
		},
		"required": []interface{}{"text"},
	}

	defs := []toolengine.ToolDefinition{
		{
			Name:               "calculator",
			Description:        "Perform basic arithmetic operations: add, subtract, multiply, divide numbers",
			ImplementationType: toolengine.TypeFunction,
			Implementation:     PathCalculator,
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"operation": map[string]interface{}{
						"type":        "string",
						"enum":        []interface{}{"add", "subtract", "multiply", "divide"},
						"description": "The arithmetic operation to perform",
					},
					"a": map[string]interface{}{"type": "number", "description": "First number"},
					"b": map[string]interface{}{"type": "number", "description": "Second number"},
				},
				"required": []interface{}{"operation", "a", "b"},
			},
			OutputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"result":    map[string]interface{}{"type": "number"},
					"operation": map[string]interface{}{"type": "string"},
					"a":         map[string]interface{}{"type": "number"},
					"b":         map[string]interface{}{"type": "number"},
				},
				"required": []interface{}{"result"},
			},
		},
		{
			Name:               "string_uppercase",
			Description:        "Convert a string to uppercase",
			ImplementationType: toolengine.TypeFunction,
			Implementation:     PathUppercase,
			InputSchema:        textInput,
		},
		{
			Name:               "string_lowercase",
			Description:        "Convert a string to lowercase",
			ImplementationType: toolengine.TypeFunction,
			Implementation:     PathLowercase,
			InputSchema:        textInput,
		},
		{
			Name:               "string_reverse",
			Description:        "Reverse a string",
			ImplementationType: toolengine.TypeFunction,
			Implementation:     PathReverse,
			InputSchema:        textInput,
		},
		{
			Name:               "string_length",
			Description:        "Get the length of a string",
			ImplementationType: toolengine.TypeFunction,
			Implementation:     PathLength,
			InputSchema:        textInput,
		},
		{
			Name:               "string_word_count",
			Description:        "Count words in a string",
			ImplementationType: toolengine.TypeFunction,
			Implementation:     PathWordCount,
			InputSchema:        textInput,
		},
		{
			Name:               "flatten_json",
			Description:        "Flatten a nested JSON object into dotted keys",
			ImplementationType: toolengine.TypeFunction,
			Implementation:     PathFlattenJSON,
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"data":      map[string]interface{}{"type": "object", "description": "The object to flatten"},
					"separator": map[string]interface{}{"type": "string", "description": "Key separator, defaults to '.'"},
				},
				"required": []interface{}{"data"},
			},
		},
		{
			Name:               "nest_json",
			Description:        "Rebuild a nested JSON object from dotted keys",
			ImplementationType: toolengine.TypeFunction,
			Implementation:     PathNestJSON,
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"data":      map[string]interface{}{"type": "object", "description": "The flattened object"},
					"separator": map[string]interface{}{"type": "string", "description": "Key separator, defaults to '.'"},
				},
				"required": []interface{}{"data"},
			},
		},
	}

	return defs
}
