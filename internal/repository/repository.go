// Package repository defines the document storage contract shared by the
// MongoDB and in-memory backends.
package repository

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no document matches a single-document operation.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert violates a unique field.
	ErrDuplicate = errors.New("duplicate document")
)

// Document is a schemaless stored record keyed by field name.
type Document = map[string]any

// Operator enumerates the comparison a Condition applies.
type Operator int

const (
	OpEq Operator = iota
	OpGTE
	OpLTE
	OpLT
	OpIn
	// OpContains is a case-insensitive substring match on a string field.
	OpContains
	// OpFieldLTE compares two fields of the same document; Value holds the other field name.
	OpFieldLTE
	OpExists
)

// Condition is one predicate on a (possibly dotted) field path.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Filter is a conjunction of conditions.
type Filter []Condition

// And returns a new filter with the extra conditions appended.
func (f Filter) And(conds ...Condition) Filter {
	out := make(Filter, 0, len(f)+len(conds))
	out = append(out, f...)
	return append(out, conds...)
}

func Eq(field string, value any) Condition  { return Condition{Field: field, Op: OpEq, Value: value} }
func GTE(field string, value any) Condition { return Condition{Field: field, Op: OpGTE, Value: value} }
func LTE(field string, value any) Condition { return Condition{Field: field, Op: OpLTE, Value: value} }
func LT(field string, value any) Condition  { return Condition{Field: field, Op: OpLT, Value: value} }

func In(field string, values ...any) Condition {
	return Condition{Field: field, Op: OpIn, Value: values}
}

func Contains(field, substr string) Condition {
	return Condition{Field: field, Op: OpContains, Value: substr}
}

func FieldLTE(field, other string) Condition {
	return Condition{Field: field, Op: OpFieldLTE, Value: other}
}

func Exists(field string, exists bool) Condition {
	return Condition{Field: field, Op: OpExists, Value: exists}
}

// SortKey orders results by one field.
type SortKey struct {
	Field string
	Desc  bool
}

// Query combines a filter with an ordering.
type Query struct {
	Filter Filter
	Sort   []SortKey
}

// Group is one bucket of a grouped sum. Key is nil when no group field is used.
type Group struct {
	Key   any     `json:"_id"`
	Total float64 `json:"total"`
}

// Store is the persistence surface used by the services. Every method touches
// a single collection.
type Store interface {
	Find(ctx context.Context, collection string, q Query) ([]Document, error)
	FindOne(ctx context.Context, collection string, f Filter) (Document, error)
	Insert(ctx context.Context, collection string, doc Document) error
	Update(ctx context.Context, collection string, f Filter, set Document) (Document, error)
	Delete(ctx context.Context, collection string, f Filter) error
	Count(ctx context.Context, collection string, f Filter) (int64, error)
	Distinct(ctx context.Context, collection, field string, f Filter) ([]any, error)
	Sum(ctx context.Context, collection string, f Filter, amountField, groupField string) ([]Group, error)
	EnsureUnique(ctx context.Context, collection, field string) error
	Close(ctx context.Context) error
}
