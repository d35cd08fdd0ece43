package recurrence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/livestock/internal/domain/models"
	"github.com/mamadbah2/livestock/internal/domain/schema"
	"github.com/mamadbah2/livestock/internal/repository"
	"github.com/mamadbah2/livestock/internal/repository/memory"
	"github.com/mamadbah2/livestock/internal/service/records"
)

func TestNextDue(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	due := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		interval string
		want     time.Time
	}{
		{models.IntervalDaily, time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC)},
		{models.IntervalWeekly, time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)},
		{models.IntervalMonthly, time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)},
		{models.IntervalQuarterly, time.Date(2024, 9, 1, 9, 0, 0, 0, time.UTC)},
		{models.IntervalYearly, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.interval, func(t *testing.T) {
			got, ok := NextDue(due, tt.interval, now)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := NextDue(due, "Fortnightly", now)
	assert.False(t, ok)
}

func TestRollCreatesNextOccurrenceOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	engine := records.NewEngine(store, nil)
	owner := records.OwnerFromID(primitive.NewObjectID())
	reminders, err := engine.For(owner, models.Reminder)
	require.NoError(t, err)

	recurring, err := reminders.Create(ctx, map[string]any{
		"title":             "Deworm flock",
		"reminderType":      "Health Check",
		"dueDate":           "2024-06-01T09:00:00Z",
		"status":            "Completed",
		"isRecurring":       true,
		"recurringInterval": "Monthly",
		"priority":          "High",
	})
	require.NoError(t, err)
	_, err = reminders.Create(ctx, map[string]any{
		"title":        "One off",
		"reminderType": "Other",
		"dueDate":      "2024-06-01",
		"status":       "Completed",
	})
	require.NoError(t, err)

	svc := NewService(store, engine, nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) }

	n, err := svc.Roll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.Roll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	original, err := reminders.Load(ctx, recurring[schema.FieldID].(primitive.ObjectID).Hex())
	require.NoError(t, err)
	nextID, ok := original["nextOccurrenceId"].(primitive.ObjectID)
	require.True(t, ok)

	next, err := reminders.Load(ctx, nextID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Deworm flock", next["title"])
	assert.Equal(t, models.StatusPending, next["status"])
	assert.Equal(t, "High", next["priority"])
	assert.Equal(t, true, next["isRecurring"])
	assert.Equal(t, time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC), next["dueDate"])
	assert.Equal(t, owner.ID(), next[schema.FieldOwner])
}

// linkFailingStore rejects the update that links an occurrence to its
// predecessor.
type linkFailingStore struct {
	*memory.Store
}

var errLinkRejected = errors.New("link rejected")

func (s linkFailingStore) Update(ctx context.Context, collection string, f repository.Filter, set repository.Document) (repository.Document, error) {
	if _, ok := set["nextOccurrenceId"]; ok {
		return nil, errLinkRejected
	}
	return s.Store.Update(ctx, collection, f, set)
}

func TestRollRemovesOccurrenceWhenLinkFails(t *testing.T) {
	ctx := context.Background()
	store := linkFailingStore{memory.New()}
	engine := records.NewEngine(store, nil)
	owner := records.OwnerFromID(primitive.NewObjectID())
	reminders, err := engine.For(owner, models.Reminder)
	require.NoError(t, err)

	_, err = reminders.Create(ctx, map[string]any{
		"title":             "Trim hooves",
		"reminderType":      "Health Check",
		"dueDate":           "2024-06-01T09:00:00Z",
		"status":            "Completed",
		"isRecurring":       true,
		"recurringInterval": "Weekly",
	})
	require.NoError(t, err)

	svc := NewService(store, engine, nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC) }

	n, err := svc.Roll(ctx)
	assert.ErrorIs(t, err, errLinkRejected)
	assert.Zero(t, n)

	count, err := reminders.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = svc.Roll(ctx)
	assert.ErrorIs(t, err, errLinkRejected)
	count, err = reminders.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
