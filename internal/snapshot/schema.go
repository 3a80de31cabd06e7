package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// FieldType describes how a snapshot value maps onto a column.
type FieldType int

const (
	String FieldType = iota
	// Ref is a nullable reference to another record's id.
	Ref
	Float
	Int
	Time
	StringList
	Object
	ObjectList
)

func (t FieldType) String() string {
	switch t {
	case String:
		return "string"
	case Ref:
		return "reference"
	case Float:
		return "number"
	case Int:
		return "integer"
	case Time:
		return "date"
	case StringList:
		return "string list"
	case Object:
		return "object"
	case ObjectList:
		return "object list"
	default:
		return "unknown"
	}
}

// Field binds a snapshot key to a database column.
type Field struct {
	Key    string
	Column string
	Type   FieldType
	// RefKind names the entity kind a Ref field points at.
	RefKind string
	// Required fields must be present and non-blank on create and may not
	// be blanked by an update.
	Required bool
}

// ErrInvalidField is wrapped by DecodePartial for unknown keys and values
// of the wrong type.
var ErrInvalidField = errors.New("invalid field")

// Schema is the ordered set of restorable fields for one entity kind.
type Schema struct {
	Kind   string
	Fields []Field
}

// NewSchema builds a schema for kind.
func NewSchema(kind string, fields ...Field) *Schema {
	return &Schema{Kind: kind, Fields: fields}
}

// Lookup returns the field registered under key.
func (s *Schema) Lookup(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// References returns the Ref fields of the schema.
func (s *Schema) References() []Field {
	var refs []Field
	for _, f := range s.Fields {
		if f.Type == Ref {
			refs = append(refs, f)
		}
	}
	return refs
}

// Decode converts a stored snapshot into a full column update set. Every
// schema column is present in the result. Values that cannot be coerced
// fall back to the column's zero value; dates that cannot be parsed become
// nil.
func (s *Schema) Decode(snap Snapshot) map[string]any {
	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		v, err := coerce(f, snap[f.Key])
		if err != nil {
			v = zero(f)
		}
		out[f.Column] = v
	}
	return out
}

// DecodePartial converts client supplied values into a column update set
// containing only the supplied keys. Unknown keys and mistyped values are
// rejected.
func (s *Schema) DecodePartial(snap Snapshot) (map[string]any, error) {
	out := make(map[string]any, len(snap))
	for key, raw := range snap {
		f, ok := s.Lookup(key)
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q for %s", ErrInvalidField, key, s.Kind)
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidField, key, err)
		}
		if f.Type == Time && raw != nil && v.(*time.Time) == nil {
			return nil, fmt.Errorf("%w: %s: expected a date", ErrInvalidField, key)
		}
		if f.Required && blank(v) {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidField, key)
		}
		out[f.Column] = v
	}
	return out, nil
}

// DecodeNew is DecodePartial for a record that does not exist yet: every
// required field must also be supplied.
func (s *Schema) DecodeNew(snap Snapshot) (map[string]any, error) {
	out, err := s.DecodePartial(snap)
	if err != nil {
		return nil, err
	}
	for _, f := range s.Fields {
		if _, ok := out[f.Column]; f.Required && !ok {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidField, f.Key)
		}
	}
	return out, nil
}

func zero(f Field) any {
	switch f.Type {
	case String:
		return ""
	case Float:
		return float64(0)
	case Int:
		return int64(0)
	case StringList:
		return datatypes.JSONSlice[string]{}
	case Object:
		return datatypes.JSONMap{}
	case ObjectList:
		return datatypes.JSONSlice[map[string]any]{}
	case Ref:
		return (*string)(nil)
	case Time:
		return (*time.Time)(nil)
	}
	return nil
}

func blank(v any) bool {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x) == ""
	case *string:
		return x == nil
	case *time.Time:
		return x == nil
	}
	return v == nil
}

func coerce(f Field, v any) (any, error) {
	if v == nil {
		return zero(f), nil
	}
	switch f.Type {
	case String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected %s", f.Type)
		}
		return s, nil
	case Ref:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected %s", f.Type)
		}
		if strings.TrimSpace(s) == "" {
			return (*string)(nil), nil
		}
		return &s, nil
	case Float:
		return toFloat(v)
	case Int:
		n, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return nil, fmt.Errorf("expected %s", f.Type)
		}
		return int64(n), nil
	case Time:
		return ParseTime(v), nil
	case StringList:
		return toStringList(v)
	case Object:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected %s", f.Type)
		}
		return datatypes.JSONMap(m), nil
	case ObjectList:
		return toObjectList(v)
	}
	return nil, fmt.Errorf("unsupported field type %d", f.Type)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func toStringList(v any) (datatypes.JSONSlice[string], error) {
	switch list := v.(type) {
	case []string:
		return datatypes.JSONSlice[string](append([]string{}, list...)), nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string list, got element %T", item)
			}
			out = append(out, s)
		}
		return datatypes.JSONSlice[string](out), nil
	}
	return nil, fmt.Errorf("expected string list, got %T", v)
}

func toObjectList(v any) (datatypes.JSONSlice[map[string]any], error) {
	switch list := v.(type) {
	case []map[string]any:
		return datatypes.JSONSlice[map[string]any](append([]map[string]any{}, list...)), nil
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("expected object list, got element %T", item)
			}
			out = append(out, m)
		}
		return datatypes.JSONSlice[map[string]any](out), nil
	}
	return nil, fmt.Errorf("expected object list, got %T", v)
}
