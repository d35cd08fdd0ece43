package reporting

import (
	"context"
	"errors"
	"sync"
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

var now = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	engine *records.Engine
	svc    *Service
	owner  records.Owner
}

func newFixture() fixture {
	return newFixtureOn(memory.New())
}

func newFixtureOn(store repository.Store) fixture {
	engine := records.NewEngine(store, nil)
	svc := NewService(engine, nil)
	svc.now = func() time.Time { return now }
	return fixture{engine: engine, svc: svc, owner: records.OwnerFromID(primitive.NewObjectID())}
}

func (f fixture) create(t *testing.T, s *schema.Schema, payload map[string]any) repository.Document {
	t.Helper()
	repo, err := f.engine.For(f.owner, s)
	require.NoError(t, err)
	doc, err := repo.Create(context.Background(), payload)
	require.NoError(t, err)
	return doc
}

func idOf(doc repository.Document) string {
	return doc[schema.FieldID].(primitive.ObjectID).Hex()
}

func TestFinanceSummaryEmptyIsZero(t *testing.T) {
	f := newFixture()
	from := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)

	f.create(t, models.Income, map[string]any{
		"incomeDate": "2024-01-05", "category": "Milk", "description": "January milk", "amount": 100,
	})

	got, err := f.svc.FinanceSummary(context.Background(), f.owner, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, FinanceSummary{
		IncomeByCategory:   []repository.Group{},
		ExpensesByCategory: []repository.Group{},
	}, got)
}

func TestFinanceSummaryTotals(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.create(t, models.Income, map[string]any{"incomeDate": "2024-03-01", "category": "Milk", "description": "m", "amount": 120})
	f.create(t, models.Income, map[string]any{"incomeDate": "2024-03-02", "category": "Milk", "description": "m", "amount": 30})
	f.create(t, models.Income, map[string]any{"incomeDate": "2024-03-03", "category": "Eggs", "description": "e", "amount": 50})
	f.create(t, models.Income, map[string]any{"incomeDate": "2023-12-31", "category": "Eggs", "description": "old", "amount": 999})
	f.create(t, models.Expense, map[string]any{"expenseDate": "2024-03-04", "category": "Feed", "description": "hay", "amount": 80})

	other := newFixture()
	other.engine = f.engine
	other.owner = records.OwnerFromID(primitive.NewObjectID())
	other.create(t, models.Income, map[string]any{"incomeDate": "2024-03-01", "category": "Milk", "description": "m", "amount": 1000})

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := f.svc.FinanceSummary(ctx, f.owner, &from, nil)
	require.NoError(t, err)

	assert.Equal(t, 200.0, got.TotalIncome)
	assert.Equal(t, 80.0, got.TotalExpenses)
	assert.Equal(t, 120.0, got.NetProfit)
	assert.Equal(t, []repository.Group{{Key: "Eggs", Total: 50}, {Key: "Milk", Total: 150}}, got.IncomeByCategory)
	assert.Equal(t, []repository.Group{{Key: "Feed", Total: 80}}, got.ExpensesByCategory)
}

func TestFinanceSummaryKeepsCents(t *testing.T) {
	f := newFixture()
	f.create(t, models.Income, map[string]any{"incomeDate": "2024-03-01", "category": "Eggs", "description": "e", "amount": 0.1})
	f.create(t, models.Income, map[string]any{"incomeDate": "2024-03-01", "category": "Milk", "description": "m", "amount": 0.2})
	f.create(t, models.Expense, map[string]any{"expenseDate": "2024-03-01", "category": "Feed", "description": "f", "amount": 0.3})

	got, err := f.svc.FinanceSummary(context.Background(), f.owner, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.3, got.TotalIncome)
	assert.Equal(t, 0.0, got.NetProfit)
}

func TestLowStock(t *testing.T) {
	f := newFixture()
	f.create(t, models.InventoryItem, map[string]any{
		"itemName": "Dewormer", "category": "Medicine", "currentStock": 5, "minimumStock": 10, "unit": "Bottles",
	})
	f.create(t, models.InventoryItem, map[string]any{
		"itemName": "Hay", "category": "Feed", "currentStock": 20, "minimumStock": 10, "unit": "Bags",
	})

	items, err := f.svc.LowStock(context.Background(), f.owner)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Dewormer", items[0]["itemName"])
}

func TestDashboardAndCompletion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	overdue := f.create(t, models.Reminder, map[string]any{
		"title": "Vaccinate herd", "reminderType": "Vaccination", "dueDate": now.Add(-24 * time.Hour),
	})
	f.create(t, models.Reminder, map[string]any{
		"title": "Trim hooves", "reminderType": "Health Check", "dueDate": now.Add(48 * time.Hour),
	})
	f.create(t, models.Reminder, map[string]any{
		"title": "Shear", "reminderType": "Other", "dueDate": now.Add(30 * 24 * time.Hour),
	})

	d, err := f.svc.SchedulerDashboard(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, Dashboard{TotalReminders: 3, PendingReminders: 3, OverdueReminders: 1, UpcomingReminders: 1}, d)

	upcoming, err := f.svc.UpcomingReminders(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "Trim hooves", upcoming[0]["title"])

	done, err := f.svc.CompleteReminder(ctx, f.owner, idOf(overdue))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done["status"])
	assert.Equal(t, now, done["completedDate"])

	d, err = f.svc.SchedulerDashboard(ctx, f.owner)
	require.NoError(t, err)
	assert.Zero(t, d.OverdueReminders)
	assert.Equal(t, int64(2), d.PendingReminders)

	again, err := f.svc.CompleteReminder(ctx, f.owner, idOf(overdue))
	require.NoError(t, err)
	assert.Equal(t, now, again["completedDate"])
}

func TestCompleteRejectsCancelledAndForeignReminders(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cancelled := f.create(t, models.Reminder, map[string]any{
		"title": "Old", "reminderType": "Other", "dueDate": "2024-06-01", "status": "Cancelled",
	})

	_, err := f.svc.CompleteReminder(ctx, f.owner, idOf(cancelled))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "status", verr.Fields[0].Field)

	stranger := records.OwnerFromID(primitive.NewObjectID())
	_, err = f.svc.CompleteReminder(ctx, stranger, idOf(cancelled))
	assert.ErrorIs(t, err, records.ErrNotFound)
}

// racingStore completes the reminder on behalf of another request right
// before the first update is applied.
type racingStore struct {
	*memory.Store
	once   sync.Once
	winner time.Time
}

func (s *racingStore) Update(ctx context.Context, collection string, f repository.Filter, set repository.Document) (repository.Document, error) {
	s.once.Do(func() {
		_, _ = s.Store.Update(ctx, collection, f, repository.Document{
			"status": models.StatusCompleted, "completedDate": s.winner,
		})
	})
	return s.Store.Update(ctx, collection, f, set)
}

func TestCompleteLosingRaceReturnsCompletedReminder(t *testing.T) {
	winner := now.Add(-time.Minute)
	f := newFixtureOn(&racingStore{Store: memory.New(), winner: winner})

	r := f.create(t, models.Reminder, map[string]any{
		"title": "Vaccinate herd", "reminderType": "Vaccination", "dueDate": now.Add(-time.Hour),
	})

	done, err := f.svc.CompleteReminder(context.Background(), f.owner, idOf(r))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done["status"])
	assert.Equal(t, winner, done["completedDate"])
}

func TestLegacyOverdueReminderCountsAsPendingAndCompletes(t *testing.T) {
	store := memory.New()
	f := newFixtureOn(store)
	ctx := context.Background()

	id := primitive.NewObjectID()
	require.NoError(t, store.Insert(ctx, models.CollectionReminders, repository.Document{
		schema.FieldID:        id,
		schema.FieldOwner:     f.owner.ID(),
		schema.FieldCreatedAt: now.Add(-72 * time.Hour),
		"title":               "Deworm flock",
		"reminderType":        "Other",
		"dueDate":             now.Add(-48 * time.Hour),
		"status":              models.StatusOverdue,
	}))

	d, err := f.svc.SchedulerDashboard(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.OverdueReminders)

	done, err := f.svc.CompleteReminder(ctx, f.owner, id.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done["status"])
	assert.Equal(t, now, done["completedDate"])

	d, err = f.svc.SchedulerDashboard(ctx, f.owner)
	require.NoError(t, err)
	assert.Zero(t, d.OverdueReminders)
}

func TestCities(t *testing.T) {
	f := newFixture()
	for _, city := range []string{"York", "Leeds", "York"} {
		f.create(t, models.EnvironmentalData, map[string]any{
			"location":         map[string]any{"city": city},
			"date":             "2024-06-01",
			"temperature":      18,
			"humidity":         60,
			"weatherCondition": "Cloudy",
		})
	}

	cities, err := f.svc.Cities(context.Background(), f.owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"Leeds", "York"}, cities)
}
