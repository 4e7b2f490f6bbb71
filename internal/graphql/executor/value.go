package executor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode"

	apperrors "github.com/booksaloon/backend/pkg/errors"
)

// object is a response object that keeps the selection order of its keys
type object struct {
	keys   []string
	values []any
}

func (o *object) set(key string, value any) {
	o.keys = append(o.keys, key)
	o.values = append(o.values, value)
}

func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// project returns the JSON form of a parent value as a map
func project(parent any) (map[string]any, error) {
	if m, ok := parent.(map[string]any); ok {
		return m, nil
	}
	if parent == nil {
		return map[string]any{}, nil
	}

	raw, err := json.Marshal(parent)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to project value", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, apperrors.NewInternalError("failed to project value", err)
	}
	return m, nil
}

// snakeCase converts a field name such as startingPrice to starting_price
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func coerceScalar(typeName string, v any) (any, error) {
	switch typeName {
	case "Int":
		return coerceInt(v)
	case "Float":
		return coerceFloat(v)
	case "Boolean":
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return nil, apperrors.NewInternalError(fmt.Sprintf("cannot use %T as Boolean", v), nil)
	case "String", "ID":
		if s, ok := v.(string); ok {
			return s, nil
		}
		if s, ok := v.(fmt.Stringer); ok {
			return s.String(), nil
		}
		return fmt.Sprint(v), nil
	}
	return v, nil
}

func coerceInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, apperrors.NewValidationError(fmt.Sprintf("%v is not an integer", n))
		}
		return int64(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, apperrors.NewValidationError(fmt.Sprintf("%s is not a number", n))
		}
		return coerceInt(f)
	}
	return 0, apperrors.NewValidationError(fmt.Sprintf("cannot use %T as Int", v))
}

func coerceFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, apperrors.NewValidationError(fmt.Sprintf("%s is not a number", n))
		}
		return f, nil
	}
	return 0, apperrors.NewValidationError(fmt.Sprintf("cannot use %T as Float", v))
}

// IntArg reads an optional Int argument, returning def when it is absent
func IntArg(args map[string]any, name string, def int) (int, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return def, nil
	}
	n, err := coerceInt(v)
	if err != nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s must be an integer", name))
	}
	return int(n), nil
}

// FloatArg reads an optional Float argument, returning def when it is absent
func FloatArg(args map[string]any, name string, def float64) (float64, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return def, nil
	}
	f, err := coerceFloat(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s must be a finite number", name))
	}
	return f, nil
}

// StringArg reads an optional String or ID argument
func StringArg(args map[string]any, name string) string {
	if s, ok := args[name].(string); ok {
		return s
	}
	return ""
}
