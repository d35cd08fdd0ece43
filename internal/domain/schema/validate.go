package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mode selects create or update validation rules.
type Mode int

const (
	// Create applies defaults and requires every required field.
	Create Mode = iota
	// Update validates only the fields present in the payload.
	Update
)

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

var validate = validator.New()

// FieldError names one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that violated the schema.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Validate checks payload against the schema and returns the cleaned document
// holding only declared fields with coerced values. Reserved and unknown keys
// are dropped.
func (s *Schema) Validate(payload map[string]any, mode Mode) (map[string]any, error) {
	out, errs := validateFields("", s.Fields, payload, mode)
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return out, nil
}

func validateFields(prefix string, fields []Field, payload map[string]any, mode Mode) (map[string]any, []FieldError) {
	out := make(map[string]any)
	var errs []FieldError

	for _, f := range fields {
		path := prefix + f.Name
		raw, present := payload[f.Name]
		if present && isBlank(raw) {
			present = false
			if mode == Update {
				if f.required {
					errs = append(errs, FieldError{Field: path, Message: "is required"})
				} else {
					out[f.Name] = nil
				}
				continue
			}
		}

		if !present {
			if mode == Update {
				continue
			}
			if f.def != nil {
				out[f.Name] = f.def
				continue
			}
			if f.required {
				errs = append(errs, FieldError{Field: path, Message: "is required"})
			}
			continue
		}

		value, fieldErrs := coerce(path, f, raw)
		if len(fieldErrs) > 0 {
			errs = append(errs, fieldErrs...)
			continue
		}
		out[f.Name] = value
	}
	return out, errs
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func coerce(path string, f Field, raw any) (any, []FieldError) {
	fail := func(msg string) (any, []FieldError) {
		return nil, []FieldError{{Field: path, Message: msg}}
	}

	switch f.Kind {
	case KindString, KindEmail:
		s, ok := raw.(string)
		if !ok {
			return fail("must be a string")
		}
		s = strings.TrimSpace(s)
		if f.lowercase {
			s = strings.ToLower(s)
		}
		if len(f.enum) > 0 && !slices.Contains(f.enum, s) {
			return fail("must be one of: " + strings.Join(f.enum, ", "))
		}
		if f.Kind == KindEmail {
			if err := validate.Var(s, "email"); err != nil {
				return fail("must be a valid email address")
			}
		}
		return s, nil

	case KindNumber:
		n, ok := toNumber(raw)
		if !ok {
			return fail("must be a number")
		}
		if f.min != nil && n < *f.min {
			return fail(fmt.Sprintf("must be at least %s", formatNumber(*f.min)))
		}
		if f.max != nil && n > *f.max {
			return fail(fmt.Sprintf("must be at most %s", formatNumber(*f.max)))
		}
		return n, nil

	case KindBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fail("must be a boolean")
			}
			return b, nil
		}
		return fail("must be a boolean")

	case KindDate:
		t, ok := ParseDate(raw)
		if !ok {
			return fail("must be a date")
		}
		return t, nil

	case KindRef:
		id, ok := ParseID(raw)
		if !ok {
			return fail("must be a valid identifier")
		}
		return id, nil

	case KindStringList:
		var items []any
		switch v := raw.(type) {
		case []any:
			items = v
		case []string:
			for _, s := range v {
				items = append(items, s)
			}
		case string:
			items = []any{v}
		default:
			return fail("must be a list of strings")
		}
		list := make([]any, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return fail("must be a list of strings")
			}
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
		return list, nil

	case KindObject:
		m, ok := raw.(map[string]any)
		if !ok {
			return fail("must be an object")
		}
		nested, errs := validateFields(path+".", f.fields, m, Create)
		if len(errs) > 0 {
			return nil, errs
		}
		return nested, nil
	}

	return fail("has an unsupported type")
}

func toNumber(raw any) (float64, bool) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseDate accepts RFC 3339 timestamps, bare dates (YYYY-MM-DD) and time values.
func ParseDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), true
	case string:
		v = strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// ParseID accepts a hex string or an ObjectID. The zero id is rejected.
func ParseID(raw any) (primitive.ObjectID, bool) {
	switch v := raw.(type) {
	case primitive.ObjectID:
		return v, !v.IsZero()
	case string:
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(v))
		if err != nil || id.IsZero() {
			return primitive.NilObjectID, false
		}
		return id, true
	}
	return primitive.NilObjectID, false
}
