package schema

import (
	"net/url"
	"strings"
	"time"
)

// Condition is one match produced by a list filter parameter.
type Condition struct {
	Field    string
	Value    any
	Contains bool
}

// ListQuery is a parsed set of list parameters.
type ListQuery struct {
	Conditions []Condition
	From       *time.Time
	To         *time.Time
}

// ParseListQuery reads the schema's declared filters and the startDate /
// endDate range from query parameters. Undeclared parameters are ignored.
func (s *Schema) ParseListQuery(values url.Values) (ListQuery, error) {
	var q ListQuery

	for _, lf := range s.Filters {
		raw := strings.TrimSpace(values.Get(lf.Param))
		if raw == "" {
			continue
		}
		switch lf.Match {
		case MatchContains:
			q.Conditions = append(q.Conditions, Condition{Field: lf.Field, Value: raw, Contains: true})
		case MatchRef:
			id, ok := ParseID(raw)
			if !ok {
				return ListQuery{}, Invalid(lf.Param, "must be a valid identifier")
			}
			q.Conditions = append(q.Conditions, Condition{Field: lf.Field, Value: id})
		default:
			q.Conditions = append(q.Conditions, Condition{Field: lf.Field, Value: raw})
		}
	}

	if s.DateField == "" {
		return q, nil
	}

	from, err := DateParam(values, "startDate", false)
	if err != nil {
		return ListQuery{}, err
	}
	to, err := DateParam(values, "endDate", true)
	if err != nil {
		return ListQuery{}, err
	}
	q.From, q.To = from, to
	return q, nil
}

// DateParam parses an optional date query parameter. With endOfDay set, a
// bare date covers the whole day.
func DateParam(values url.Values, name string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	t, ok := ParseDate(raw)
	if !ok {
		return nil, Invalid(name, "must be a date")
	}
	if endOfDay && len(raw) == len("2006-01-02") {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
