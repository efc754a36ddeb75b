package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"github.com/garyjia/rendicion/internal/domain/receipt"
)

var (
	// ErrNoJSON means the model answer contained no JSON object
	ErrNoJSON = errors.New("no JSON object in model response")
	// ErrInvalidGuess means the JSON object did not match the guess schema
	ErrInvalidGuess = errors.New("model response does not match guess schema")
)

const guessSchemaJSON = `{
  "type": "object",
  "properties": {
    "importe":        {"type": "number"},
    "fecha":          {"type": "string"},
    "pais":           {"type": "string"},
    "descripcion":    {"type": "string"},
    "tipoProducto":   {"type": "string"},
    "codigoArticulo": {"type": "string"},
    "formalidad":     {"type": "string"},
    "proveedor":      {"type": "string"},
    "textoCompleto":  {"type": "string"}
  }
}`

var guessSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("guess.json", strings.NewReader(guessSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("guess.json")
})

// keyAliases maps lowercase keys models commonly use onto canonical ones
var keyAliases = map[string]string{
	"importe":        "importe",
	"monto":          "importe",
	"total":          "importe",
	"importetotal":   "importe",
	"amount":         "importe",
	"fecha":          "fecha",
	"date":           "fecha",
	"pais":           "pais",
	"país":           "pais",
	"country":        "pais",
	"descripcion":    "descripcion",
	"descripción":    "descripcion",
	"description":    "descripcion",
	"tipoproducto":   "tipoProducto",
	"tipo":           "tipoProducto",
	"type":           "tipoProducto",
	"codigoarticulo": "codigoArticulo",
	"códigoartículo": "codigoArticulo",
	"articulo":       "codigoArticulo",
	"artículo":       "codigoArticulo",
	"codigo":         "codigoArticulo",
	"formalidad":     "formalidad",
	"formality":      "formalidad",
	"proveedor":      "proveedor",
	"provider":       "proveedor",
	"comercio":       "proveedor",
	"textocompleto":  "textoCompleto",
	"texto":          "textoCompleto",
	"rawtext":        "textoCompleto",
	"fulltext":       "textoCompleto",
}

var markdownFence = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")

// ParseGuess turns a model answer into a receipt guess. It tolerates
// markdown fences, surrounding prose, synonym keys, null values and amounts
// written as regional strings.
func ParseGuess(content string) (*receipt.AIGuess, error) {
	raw := ExtractJSON(markdownFence.ReplaceAllString(content, ""))
	if raw == "" {
		return nil, ErrNoJSON
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}

	fields = Sanitize(fields)

	schema, err := guessSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile guess schema: %w", err)
	}
	if err := schema.Validate(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGuess, err)
	}

	guess := &receipt.AIGuess{
		Date:        stringField(fields, "fecha"),
		Country:     stringField(fields, "pais"),
		Description: stringField(fields, "descripcion"),
		TypeCode:    stringField(fields, "tipoProducto"),
		ArticleCode: stringField(fields, "codigoArticulo"),
		Formality:   stringField(fields, "formalidad"),
		Provider:    stringField(fields, "proveedor"),
		FullText:    stringField(fields, "textoCompleto"),
	}
	if n, ok := fields["importe"].(json.Number); ok {
		if d, err := decimal.NewFromString(n.String()); err == nil {
			guess.Amount = d
		}
	}
	return guess, nil
}

// Sanitize renames synonym keys, drops nulls, trims strings and coerces
// numeric strings so the result can be checked against the guess schema.
// Canonical keys win over their synonyms.
func Sanitize(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	// canonical keys first, then synonyms fill the gaps
	for pass := 0; pass < 2; pass++ {
		for k, v := range in {
			canonical, known := keyAliases[strings.ToLower(strings.TrimSpace(k))]
			if !known {
				if pass == 0 && v != nil {
					out[k] = v
				}
				continue
			}
			if (pass == 0) != (canonical == k) {
				continue
			}
			if _, taken := out[canonical]; taken {
				continue
			}
			if cleaned, ok := cleanValue(canonical, v); ok {
				out[canonical] = cleaned
			}
		}
	}
	return out
}

func cleanValue(key string, v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string:
		s := strings.TrimSpace(val)
		if key == "importe" {
			d, ok := receipt.NormalizeNumber(s)
			if !ok {
				return nil, false
			}
			return json.Number(d.String()), true
		}
		return s, true
	case json.Number:
		if key == "importe" {
			return val, true
		}
		return val.String(), true
	case float64:
		if key == "importe" {
			return json.Number(decimal.NewFromFloat(val).String()), true
		}
		return decimal.NewFromFloat(val).String(), true
	}
	return v, true
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// ExtractJSON returns the first balanced JSON object in content, or "".
func ExtractJSON(content string) string {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return ""
	}
	end := findJSONEnd(content, start)
	if end <= start {
		return ""
	}
	return content[start:end]
}

// findJSONEnd finds the end of JSON content starting at a given position
func findJSONEnd(content string, start int) int {
	if start < 0 || start >= len(content) || content[start] != '{' {
		return -1
	}

	braceCount := 0
	inString := false
	escapeNext := false

	for i := start; i < len(content); i++ {
		char := content[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if char == '\\' && inString {
			escapeNext = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch char {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				return i + 1
			}
		}
	}
	return -1
}
