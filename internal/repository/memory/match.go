package memory

import (
	"bytes"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/livestock/internal/repository"
)

// lookup resolves a dotted path inside nested documents.
func lookup(doc repository.Document, path string) (any, bool) {
	var current any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func matches(doc repository.Document, f repository.Filter) bool {
	for _, cond := range f {
		if !matchCondition(doc, cond) {
			return false
		}
	}
	return true
}

func matchCondition(doc repository.Document, cond repository.Condition) bool {
	value, present := lookup(doc, cond.Field)

	switch cond.Op {
	case repository.OpExists:
		want, _ := cond.Value.(bool)
		return present == want
	case repository.OpEq:
		if !present {
			return cond.Value == nil
		}
		return equal(value, cond.Value)
	case repository.OpIn:
		values, _ := cond.Value.([]any)
		for _, candidate := range values {
			if present && equal(value, candidate) {
				return true
			}
		}
		return false
	case repository.OpContains:
		s, ok := value.(string)
		needle, _ := cond.Value.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(needle))
	case repository.OpFieldLTE:
		other, _ := cond.Value.(string)
		otherValue, otherPresent := lookup(doc, other)
		if !present || !otherPresent {
			return false
		}
		c, ok := compare(value, otherValue)
		return ok && c <= 0
	case repository.OpGTE, repository.OpLTE, repository.OpLT:
		if !present {
			return false
		}
		c, ok := compare(value, cond.Value)
		if !ok {
			return false
		}
		switch cond.Op {
		case repository.OpGTE:
			return c >= 0
		case repository.OpLTE:
			return c <= 0
		default:
			return c < 0
		}
	}
	return false
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	c, ok := compare(a, b)
	return ok && c == 0
}

// compare orders two scalar values of compatible kinds.
func compare(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}

	switch va := a.(type) {
	case string:
		vb, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(va, vb), true
	case time.Time:
		vb, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return va.Compare(vb), true
	case primitive.ObjectID:
		vb, ok := b.(primitive.ObjectID)
		if !ok {
			return 0, false
		}
		return bytes.Compare(va[:], vb[:]), true
	case bool:
		vb, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case va == vb:
			return 0, true
		case !va:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// less orders documents for a sort key. Missing values sort first ascending.
func less(a, b repository.Document, keys []repository.SortKey) bool {
	for _, key := range keys {
		va, okA := lookup(a, key.Field)
		vb, okB := lookup(b, key.Field)
		var c int
		switch {
		case !okA && !okB:
			c = 0
		case !okA:
			c = -1
		case !okB:
			c = 1
		default:
			c, _ = compare(va, vb)
		}
		if c == 0 {
			continue
		}
		if key.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}

func clone(doc repository.Document) repository.Document {
	out := make(repository.Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return clone(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}
