package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/livestock/internal/repository"
)

func TestFilterDocument(t *testing.T) {
	owner := primitive.NewObjectID()
	id := primitive.NewObjectID()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter repository.Filter
		want   bson.M
	}{
		{
			name:   "empty",
			filter: nil,
			want:   bson.M{},
		},
		{
			name:   "equality",
			filter: repository.Filter{repository.Eq("userId", owner), repository.Eq("status", "Pending")},
			want:   bson.M{"userId": owner, "status": "Pending"},
		},
		{
			name:   "range merged on one field",
			filter: repository.Filter{repository.GTE("dueDate", from), repository.LTE("dueDate", to)},
			want:   bson.M{"dueDate": bson.M{"$gte": from, "$lte": to}},
		},
		{
			name:   "in",
			filter: repository.Filter{repository.In("_id", id)},
			want:   bson.M{"_id": bson.M{"$in": bson.A{id}}},
		},
		{
			name:   "contains escapes pattern",
			filter: repository.Filter{repository.Contains("location.city", "St. Ives")},
			want:   bson.M{"location.city": primitive.Regex{Pattern: `St\. Ives`, Options: "i"}},
		},
		{
			name:   "field comparison",
			filter: repository.Filter{repository.Eq("userId", owner), repository.FieldLTE("currentStock", "minimumStock")},
			want: bson.M{
				"userId": owner,
				"$expr":  bson.M{"$lte": bson.A{"$currentStock", "$minimumStock"}},
			},
		},
		{
			name:   "exists",
			filter: repository.Filter{repository.Exists("nextOccurrenceId", false)},
			want:   bson.M{"nextOccurrenceId": bson.M{"$exists": false}},
		},
		{
			name:   "repeated equality keeps both",
			filter: repository.Filter{repository.Eq("status", "Pending"), repository.Eq("status", "Overdue")},
			want: bson.M{
				"status": "Pending",
				"$and":   bson.A{bson.M{"status": "Overdue"}},
			},
		},
		{
			name:   "equality then range",
			filter: repository.Filter{repository.Eq("n", 3), repository.LT("n", 5)},
			want:   bson.M{"n": bson.M{"$eq": 3, "$lt": 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filterDocument(tt.filter))
		})
	}
}

func TestSortDocument(t *testing.T) {
	got := sortDocument([]repository.SortKey{{Field: "dueDate"}, {Field: "createdAt", Desc: true}})
	assert.Equal(t, bson.D{{Key: "dueDate", Value: 1}, {Key: "createdAt", Value: -1}}, got)
}

func TestSumPipelineWithoutGroup(t *testing.T) {
	pipeline := sumPipeline(nil, "amount", "")
	group := pipeline[1][0].Value.(bson.D)
	assert.Nil(t, group[0].Value)
	assert.Equal(t, bson.D{{Key: "$sum", Value: "$amount"}}, group[1].Value)
}

func TestNormalizeValue(t *testing.T) {
	when := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	raw := bson.M{
		"date":     primitive.NewDateTimeFromTime(when),
		"location": bson.D{{Key: "city", Value: "Leeds"}},
		"skills":   bson.A{"milking", bson.M{"x": int32(2)}},
		"__v":      int32(0),
	}

	got := normalizeDocument(raw)

	assert.True(t, when.Equal(got["date"].(time.Time)))
	assert.Equal(t, repository.Document{"city": "Leeds"}, got["location"])
	assert.Equal(t, []any{"milking", repository.Document{"x": float64(2)}}, got["skills"])
	assert.Equal(t, float64(0), got["__v"])
}
