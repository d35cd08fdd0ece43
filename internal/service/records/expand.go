package records

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/livestock/internal/domain/schema"
	"github.com/mamadbah2/livestock/internal/repository"
)

// Expand replaces each declared reference in docs with a projection of the
// referenced record. Referents that are missing, or that belong to another
// owner, render as nil. One query is issued per reference field.
func (r *Repository) Expand(ctx context.Context, docs []repository.Document) error {
	refs := r.schema.Refs
	if len(refs) == 0 || len(docs) == 0 {
		return nil
	}

	resolved := make([]map[primitive.ObjectID]repository.Document, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		ids := collectIDs(docs, ref.Field)
		if len(ids) == 0 {
			continue
		}
		g.Go(func() error {
			found, err := r.engine.store.Find(gctx, ref.Collection, repository.Query{
				Filter: r.scope(repository.In(schema.FieldID, ids...)),
			})
			if err != nil {
				return fmt.Errorf("expand %s: %w", ref.Field, err)
			}
			byID := make(map[primitive.ObjectID]repository.Document, len(found))
			for _, doc := range found {
				if id, ok := doc[schema.FieldID].(primitive.ObjectID); ok {
					byID[id] = project(doc, ref.Projection)
				}
			}
			resolved[i] = byID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, ref := range refs {
		for _, doc := range docs {
			id, ok := doc[ref.Field].(primitive.ObjectID)
			if !ok {
				continue
			}
			if p, ok := resolved[i][id]; ok {
				doc[ref.Field] = p
			} else {
				doc[ref.Field] = nil
			}
		}
	}
	return nil
}

func collectIDs(docs []repository.Document, field string) []any {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []any
	for _, doc := range docs {
		id, ok := doc[field].(primitive.ObjectID)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func project(doc repository.Document, fields []string) repository.Document {
	out := repository.Document{schema.FieldID: doc[schema.FieldID]}
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}
