package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/dukex/campaigner/pkg/models"
)

var variablePattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ConvertVariables rewrites {{name}} placeholders into n8n expressions
// reading the field from the current item.
func ConvertVariables(text string) string {
	if text == "" {
		return text
	}

	return variablePattern.ReplaceAllString(text, "={{ $$json.$1 }}")
}

// props reads node properties with the flow editor's loose typing: a missing,
// null, empty, zero or false value counts as absent.
type props map[string]any

func propsOf(node models.FlowNode) props {
	if node.Data.Properties == nil {
		return props{}
	}

	return props(node.Data.Properties)
}

func isBlank(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case bool:
		return !value
	case float64:
		return value == 0 || math.IsNaN(value)
	case int:
		return value == 0
	case int64:
		return value == 0
	}

	return false
}

func (p props) present(key string) bool {
	return !isBlank(p[key])
}

// string returns the property as a string, or def when it is absent.
func (p props) string(key, def string) string {
	v := p[key]
	if isBlank(v) {
		return def
	}

	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case map[string]any, []any:
		data, err := json.Marshal(value)
		if err != nil {
			return def
		}

		return string(data)
	default:
		return fmt.Sprint(value)
	}
}

// int parses the leading integer of the property, returning def on failure or zero.
func (p props) int(key string, def int) int {
	n, ok := leadingInt(p[key])
	if !ok || n == 0 {
		return def
	}

	return n
}

// notFalse is true unless the property is explicitly the boolean false.
func (p props) notFalse(key string) bool {
	b, ok := p[key].(bool)

	return !ok || b
}

// maxExactFloat bounds the numbers whose integer part still fits an int.
const maxExactFloat = 1 << 62

func leadingInt(v any) (int, bool) {
	switch value := v.(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) || math.Abs(value) >= maxExactFloat {
			return 0, false
		}

		return int(math.Trunc(value)), true
	case int:
		return value, true
	case int64:
		return int(value), true
	case string:
		s := strings.TrimLeftFunc(value, unicode.IsSpace)

		end := 0
		if end < len(s) && (s[end] == '-' || s[end] == '+') {
			end++
		}

		digits := end
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}

		if end == digits {
			return 0, false
		}

		n, err := strconv.Atoi(s[:end])
		if err != nil {
			return 0, false
		}

		return n, true
	}

	return 0, false
}

// headerParameters reshapes a JSON object of headers into n8n's name/value list.
// Anything that is not a JSON object yields an empty block.
func headerParameters(v any) models.HeaderParameters {
	switch value := v.(type) {
	case string:
		params, err := orderedObject([]byte(value))
		if err != nil {
			return models.HeaderParameters{}
		}

		return models.HeaderParameters{Parameters: params}
	case map[string]any:
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}

		slices.Sort(keys)

		params := make([]models.HeaderParameter, 0, len(keys))
		for _, k := range keys {
			params = append(params, models.HeaderParameter{Name: k, Value: value[k]})
		}

		return models.HeaderParameters{Parameters: params}
	}

	return models.HeaderParameters{}
}

// orderedObject decodes a JSON object keeping its key order.
func orderedObject(data []byte) ([]models.HeaderParameter, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("headers must be a JSON object")
	}

	params := make([]models.HeaderParameter, 0)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected header key %v", keyTok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}

		params = append(params, models.HeaderParameter{Name: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return params, nil
}
