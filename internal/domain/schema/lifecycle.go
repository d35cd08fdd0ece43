package schema

import (
	"fmt"
	"slices"
	"time"
)

// Lifecycle restricts how a status field may change once a record exists.
// A status with no entry in Transitions is terminal.
type Lifecycle struct {
	Field       string
	Transitions map[string][]string
	// Aliases maps legacy stored values onto the status they stand for.
	Aliases map[string]string
	// Completed is the status whose entry stamps StampField with the current
	// time when the payload does not carry it.
	Completed  string
	StampField string
}

// Normalize maps a stored status through Aliases.
func (l *Lifecycle) Normalize(status string) string {
	if alias, ok := l.Aliases[status]; ok {
		return alias
	}
	return status
}

// Check reports a validation error on Field unless a record stored with
// status from may move to status to. Keeping the same status is always
// allowed, and so is any move from a record that has no status yet.
func (l *Lifecycle) Check(from, to string) error {
	from = l.Normalize(from)
	if from == "" || from == to {
		return nil
	}
	next, ok := l.Transitions[from]
	if !ok {
		return Invalid(l.Field, fmt.Sprintf("cannot change a %s record", from))
	}
	if !slices.Contains(next, to) {
		return Invalid(l.Field, fmt.Sprintf("cannot change from %s to %s", from, to))
	}
	return nil
}

// Stamp sets StampField on doc when doc enters the Completed status from a
// different stored status and carries no completion time of its own.
func (l *Lifecycle) Stamp(doc map[string]any, from string, now time.Time) {
	if l.Completed == "" || l.StampField == "" {
		return
	}
	if to, _ := doc[l.Field].(string); to != l.Completed || l.Normalize(from) == l.Completed {
		return
	}
	if v, ok := doc[l.StampField]; !ok || v == nil {
		doc[l.StampField] = now
	}
}
