// Package records implements the owner-scoped CRUD engine shared by every
// record family. A Repository can only be obtained for a concrete owner and
// every operation it performs is filtered and stamped with that owner.
package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/domain/schema"
	"github.com/mamadbah2/livestock/internal/repository"
)

// ErrNotFound is returned when a record does not exist or belongs to a
// different owner. The two cases are not distinguished.
var ErrNotFound = errors.New("record not found")

// Engine hands out owner-scoped repositories over a document store.
type Engine struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine wires an engine over store.
func NewEngine(store repository.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// For returns the repository of owner's records described by s.
func (e *Engine) For(owner Owner, s *schema.Schema) (*Repository, error) {
	if owner.IsZero() {
		return nil, ErrNoOwner
	}
	if !s.Owned {
		return nil, fmt.Errorf("%s records are not owner scoped", s.Label)
	}
	return &Repository{engine: e, owner: owner, schema: s}, nil
}

// Repository performs CRUD on one owner's records of one schema.
type Repository struct {
	engine *Engine
	owner  Owner
	schema *schema.Schema
}

// Schema returns the schema the repository serves.
func (r *Repository) Schema() *schema.Schema { return r.schema }

// Owner returns the owner the repository is scoped to.
func (r *Repository) Owner() Owner { return r.owner }

func (r *Repository) scope(extra ...repository.Condition) repository.Filter {
	return repository.Filter{repository.Eq(schema.FieldOwner, r.owner.ID())}.And(extra...)
}

func (r *Repository) byID(id string) (repository.Filter, bool) {
	oid, ok := schema.ParseID(id)
	if !ok {
		return nil, false
	}
	return r.scope(repository.Eq(schema.FieldID, oid)), true
}

func (r *Repository) defaultSort() []repository.SortKey {
	s := r.schema.Sort
	if s.Field == "" {
		s = schema.Sort{Field: schema.FieldCreatedAt, Desc: true}
	}
	keys := []repository.SortKey{{Field: s.Field, Desc: s.Desc}}
	if s.Field != schema.FieldCreatedAt {
		keys = append(keys, repository.SortKey{Field: schema.FieldCreatedAt, Desc: true})
	}
	return keys
}

// List returns the owner's records matching q in the schema's default order,
// with references expanded.
func (r *Repository) List(ctx context.Context, q schema.ListQuery) ([]repository.Document, error) {
	var conds []repository.Condition
	for _, c := range q.Conditions {
		if c.Contains {
			conds = append(conds, repository.Contains(c.Field, fmt.Sprint(c.Value)))
			continue
		}
		conds = append(conds, repository.Eq(c.Field, c.Value))
	}
	if r.schema.DateField != "" {
		if q.From != nil {
			conds = append(conds, repository.GTE(r.schema.DateField, *q.From))
		}
		if q.To != nil {
			conds = append(conds, repository.LTE(r.schema.DateField, *q.To))
		}
	}

	docs, err := r.Find(ctx, conds...)
	if err != nil {
		return nil, err
	}
	if err := r.Expand(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Find returns the owner's records matching conds in the default order
// without expanding references.
func (r *Repository) Find(ctx context.Context, conds ...repository.Condition) ([]repository.Document, error) {
	docs, err := r.engine.store.Find(ctx, r.schema.Collection, repository.Query{
		Filter: r.scope(conds...),
		Sort:   r.defaultSort(),
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.schema.Collection, err)
	}
	return docs, nil
}

// Get returns one record with references expanded.
func (r *Repository) Get(ctx context.Context, id string) (repository.Document, error) {
	doc, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Expand(ctx, []repository.Document{doc}); err != nil {
		return nil, err
	}
	return doc, nil
}

// Load returns one stored record as is.
func (r *Repository) Load(ctx context.Context, id string) (repository.Document, error) {
	return r.load(ctx, id)
}

func (r *Repository) load(ctx context.Context, id string) (repository.Document, error) {
	filter, ok := r.byID(id)
	if !ok {
		return nil, ErrNotFound
	}
	doc, err := r.engine.store.FindOne(ctx, r.schema.Collection, filter)
	if err != nil {
		return nil, r.translate("get", err)
	}
	return doc, nil
}

// Create validates payload, stamps id, owner and timestamps, and stores it.
func (r *Repository) Create(ctx context.Context, payload map[string]any) (repository.Document, error) {
	doc, err := r.schema.Validate(payload, schema.Create)
	if err != nil {
		return nil, err
	}

	now := r.engine.now()
	if lc := r.schema.Lifecycle; lc != nil {
		lc.Stamp(doc, "", now)
	}
	doc[schema.FieldID] = primitive.NewObjectID()
	doc[schema.FieldOwner] = r.owner.ID()
	doc[schema.FieldCreatedAt] = now
	doc[schema.FieldUpdatedAt] = now

	if err := r.engine.store.Insert(ctx, r.schema.Collection, doc); err != nil {
		return nil, fmt.Errorf("create %s: %w", r.schema.Collection, err)
	}
	r.engine.logger.Debug("record created",
		zap.String("collection", r.schema.Collection),
		zap.String("owner", r.owner.String()),
		zap.Any("id", doc[schema.FieldID]),
	)
	return doc, nil
}

// Update validates the fields present in payload and applies them to the
// record matching both id and owner.
func (r *Repository) Update(ctx context.Context, id string, payload map[string]any) (repository.Document, error) {
	return r.UpdateWhere(ctx, id, payload)
}

// UpdateWhere is Update restricted to a record that also satisfies conds.
// A record that exists but fails conds is reported as not found. When the
// schema has a Lifecycle and payload changes the status, the move is checked
// against the stored status and the write only applies if that status is
// still unchanged.
func (r *Repository) UpdateWhere(ctx context.Context, id string, payload map[string]any, conds ...repository.Condition) (repository.Document, error) {
	set, err := r.schema.Validate(payload, schema.Update)
	if err != nil {
		return nil, err
	}
	filter, ok := r.byID(id)
	if !ok {
		return nil, ErrNotFound
	}
	now := r.engine.now()

	if lc := r.schema.Lifecycle; lc != nil {
		if _, changing := set[lc.Field]; changing {
			guard, err := r.checkTransition(ctx, filter, lc, set, now)
			if err != nil {
				return nil, err
			}
			conds = append(conds, guard)
		}
	}
	set[schema.FieldUpdatedAt] = now

	doc, err := r.engine.store.Update(ctx, r.schema.Collection, filter.And(conds...), set)
	if err != nil {
		return nil, r.translate("update", err)
	}
	return doc, nil
}

// checkTransition validates the status change in set against the stored
// record and returns the condition pinning the stored status.
func (r *Repository) checkTransition(ctx context.Context, filter repository.Filter, lc *schema.Lifecycle, set map[string]any, now time.Time) (repository.Condition, error) {
	current, err := r.engine.store.FindOne(ctx, r.schema.Collection, filter)
	if err != nil {
		return repository.Condition{}, r.translate("update", err)
	}

	from, _ := current[lc.Field].(string)
	to, _ := set[lc.Field].(string)
	if err := lc.Check(from, to); err != nil {
		return repository.Condition{}, err
	}
	lc.Stamp(set, from, now)
	return repository.Eq(lc.Field, current[lc.Field]), nil
}

// Delete permanently removes the record matching both id and owner.
func (r *Repository) Delete(ctx context.Context, id string) error {
	filter, ok := r.byID(id)
	if !ok {
		return ErrNotFound
	}
	if err := r.engine.store.Delete(ctx, r.schema.Collection, filter); err != nil {
		return r.translate("delete", err)
	}
	return nil
}

// Count counts the owner's records matching conds.
func (r *Repository) Count(ctx context.Context, conds ...repository.Condition) (int64, error) {
	n, err := r.engine.store.Count(ctx, r.schema.Collection, r.scope(conds...))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.schema.Collection, err)
	}
	return n, nil
}

// Sum totals amountField over the owner's records matching conds, grouped by
// groupField when set.
func (r *Repository) Sum(ctx context.Context, amountField, groupField string, conds ...repository.Condition) ([]repository.Group, error) {
	groups, err := r.engine.store.Sum(ctx, r.schema.Collection, r.scope(conds...), amountField, groupField)
	if err != nil {
		return nil, fmt.Errorf("sum %s.%s: %w", r.schema.Collection, amountField, err)
	}
	return groups, nil
}

// Distinct lists the unique values of field over the owner's records.
func (r *Repository) Distinct(ctx context.Context, field string, conds ...repository.Condition) ([]any, error) {
	values, err := r.engine.store.Distinct(ctx, r.schema.Collection, field, r.scope(conds...))
	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", r.schema.Collection, field, err)
	}
	return values, nil
}

func (r *Repository) translate(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s %s: %w", op, r.schema.Collection, err)
}
