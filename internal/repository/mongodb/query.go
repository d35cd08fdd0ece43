package mongodb

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/livestock/internal/repository"
)

var operators = map[repository.Operator]string{
	repository.OpGTE:    "$gte",
	repository.OpLTE:    "$lte",
	repository.OpLT:     "$lt",
	repository.OpIn:     "$in",
	repository.OpExists: "$exists",
}

// filterDocument translates a repository.Filter into a MongoDB query document.
// Range conditions on the same field are merged into one operator document.
func filterDocument(f repository.Filter) bson.M {
	out := bson.M{}
	var exprs, extra bson.A

	for _, cond := range f {
		switch cond.Op {
		case repository.OpEq:
			existing, present := out[cond.Field]
			if !present {
				out[cond.Field] = cond.Value
				continue
			}
			// An equality next to range operators on the same field must
			// become $eq to live in the same operator document.
			if ops, ok := existing.(bson.M); ok {
				if _, taken := ops["$eq"]; !taken {
					ops["$eq"] = cond.Value
					continue
				}
			}
			// A second equality on one field must hold as well, not replace
			// the first.
			extra = append(extra, bson.M{cond.Field: cond.Value})
		case repository.OpContains:
			pattern, _ := cond.Value.(string)
			out[cond.Field] = primitive.Regex{Pattern: regexp.QuoteMeta(pattern), Options: "i"}
		case repository.OpFieldLTE:
			other, _ := cond.Value.(string)
			exprs = append(exprs, bson.M{"$lte": bson.A{"$" + cond.Field, "$" + other}})
		default:
			ops, ok := out[cond.Field].(bson.M)
			if !ok {
				ops = bson.M{}
				if existing, present := out[cond.Field]; present {
					ops["$eq"] = existing
				}
				out[cond.Field] = ops
			}
			value := cond.Value
			if values, isList := value.([]any); isList {
				value = bson.A(values)
			}
			ops[operators[cond.Op]] = value
		}
	}

	switch len(exprs) {
	case 0:
	case 1:
		out["$expr"] = exprs[0]
	default:
		out["$expr"] = bson.M{"$and": exprs}
	}
	if len(extra) > 0 {
		out["$and"] = extra
	}
	return out
}

func sortDocument(keys []repository.SortKey) bson.D {
	out := make(bson.D, 0, len(keys))
	for _, key := range keys {
		dir := 1
		if key.Desc {
			dir = -1
		}
		out = append(out, bson.E{Key: key.Field, Value: dir})
	}
	return out
}

func sumPipeline(f repository.Filter, amountField, groupField string) mongo.Pipeline {
	var groupKey any
	if groupField != "" {
		groupKey = "$" + groupField
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: filterDocument(f)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: groupKey},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$" + amountField}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// normalizeDocument converts driver-specific decoded types into the plain Go
// values the services and JSON encoder work with.
func normalizeDocument(m bson.M) repository.Document {
	out := make(repository.Document, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return normalizeDocument(t)
	case bson.D:
		return normalizeDocument(t.Map())
	case bson.A:
		out := make([]any, len(t))
		for i := range t {
			out[i] = normalizeValue(t[i])
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	}
	return v
}
