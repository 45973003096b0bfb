// Package builtins provides the function tools that ship with the engine:
// a calculator, string utilities, and JSON shape transforms. Register wires
// them into a FunctionRegistry under their descriptor paths.
package builtins

import (
	"context"
	"fmt"
	"strings"

	"github.com/harun/toolbridge/pkg/toolengine"
)

// Descriptor paths the builtins are registered under.
const (
	PathCalculator  = "builtins.calculator.execute"
	PathUppercase   = "builtins.strings.uppercase"
	PathLowercase   = "builtins.strings.lowercase"
	PathReverse     = "builtins.strings.reverse"
	PathLength      = "builtins.strings.length"
	PathWordCount   = "builtins.strings.word_count"
	PathFlattenJSON = "builtins.transform.flatten"
	PathNestJSON    = "builtins.transform.nest"
)

// Register adds every builtin to the registry.
func Register(registry *toolengine.FunctionRegistry) error {
	entries := map[string]toolengine.ToolFunc{
		PathCalculator:  wrap(Calculator),
		PathUppercase:   wrap(Uppercase),
		PathLowercase:   wrap(Lowercase),
		PathReverse:     wrap(Reverse),
		PathLength:      wrap(Length),
		PathWordCount:   wrap(WordCount),
		PathFlattenJSON: wrap(FlattenJSON),
		PathNestJSON:    wrap(NestJSON),
	}

	for path, fn := range entries {
		if err := registry.Register(path, fn); err != nil {
			return err
		}
	}
	return nil
}

func wrap(fn func(arguments map[string]interface{}) (interface{}, error)) toolengine.ToolFunc {
	return func(_ context.Context, arguments map[string]interface{}) (interface{}, error) {
		return fn(arguments)
	}
}

// Calculator performs one of add, subtract, multiply, divide on two
// numbers.
func Calculator(arguments map[string]interface{}) (interface{}, error) {
	operation, _ := arguments["operation"].(string)

	a, okA := toNumber(arguments["a"])
	b, okB := toNumber(arguments["b"])
	if !okA || !okB {
		return nil, fmt.Errorf("both 'a' and 'b' parameters are required")
	}

	var result float64
	switch operation {
	case "add":
		result = a + b
	case "subtract":
		result = a - b
	case "multiply":
		result = a * b
	case "divide":
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		result = a / b
	default:
		return nil, fmt.Errorf("invalid operation: %q", operation)
	}

	return map[string]interface{}{
		"result":    result,
		"operation": operation,
		"a":         a,
		"b":         b,
	}, nil
}

// Uppercase converts text to upper case.
func Uppercase(arguments map[string]interface{}) (interface{}, error) {
	text, _ := arguments["text"].(string)
	return map[string]interface{}{"result": strings.ToUpper(text), "original": text}, nil
}

// Lowercase converts text to lower case.
func Lowercase(arguments map[string]interface{}) (interface{}, error) {
	text, _ := arguments["text"].(string)
	return map[string]interface{}{"result": strings.ToLower(text), "original": text}, nil
}

// Reverse reverses text rune by rune.
func Reverse(arguments map[string]interface{}) (interface{}, error) {
	text, _ := arguments["text"].(string)
	runes := []rune(text)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return map[string]interface{}{"result": string(runes), "original": text}, nil
}

// Length returns the length of text in runes.
func Length(arguments map[string]interface{}) (interface{}, error) {
	text, _ := arguments["text"].(string)
	return map[string]interface{}{"result": len([]rune(text)), "original": text}, nil
}

// WordCount counts whitespace-separated words.
func WordCount(arguments map[string]interface{}) (interface{}, error) {
	text, _ := arguments["text"].(string)
	words := strings.Fields(text)
	out := make([]interface{}, len(words))
	for i, w := range words {
		out[i] = w
	}
	return map[string]interface{}{"result": len(words), "original": text, "words": out}, nil
}

// FlattenJSON flattens a nested object into a single level with dotted
// keys.
func FlattenJSON(arguments map[string]interface{}) (interface{}, error) {
	data, ok := arguments["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("'data' must be an object")
	}
	separator := separatorArg(arguments)

	flat := map[string]interface{}{}
	flattenInto(flat, "", data, separator)
	return map[string]interface{}{"result": flat}, nil
}

// NestJSON rebuilds a nested object from dotted keys, the inverse of
// FlattenJSON.
func NestJSON(arguments map[string]interface{}) (interface{}, error) {
	data, ok := arguments["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("'data' must be an object")
	}
	separator := separatorArg(arguments)

	nested := map[string]interface{}{}
	for key, value := range data {
		parts := strings.Split(key, separator)
		current := nested
		for _, part := range parts[:len(parts)-1] {
			next, ok := current[part].(map[string]interface{})
			if !ok {
				next = map[string]interface{}{}
				current[part] = next
			}
			current = next
		}
		current[parts[len(parts)-1]] = value
	}
	return map[string]interface{}{"result": nested}, nil
}

func flattenInto(out map[string]interface{}, prefix string, value interface{}, separator string) {
	obj, ok := value.(map[string]interface{})
	if !ok || len(obj) == 0 {
		out[prefix] = value
		return
	}
	for key, child := range obj {
		childKey := key
		if prefix != "" {
			childKey = prefix + separator + key
		}
		flattenInto(out, childKey, child, separator)
	}
}

func separatorArg(arguments map[string]interface{}) string {
	if sep, ok := arguments["separator"].(string); ok && sep != "" {
		return sep
	}
	return "."
}

func toNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
