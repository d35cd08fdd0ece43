// Package reporting computes the aggregate views over an owner's records:
// finance totals, low stock, the reminder dashboard and the city list.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/livestock/internal/domain/models"
	"github.com/mamadbah2/livestock/internal/domain/schema"
	"github.com/mamadbah2/livestock/internal/repository"
	"github.com/mamadbah2/livestock/internal/service/records"
)

// UpcomingWindow is how far ahead a pending reminder counts as upcoming.
const UpcomingWindow = 7 * 24 * time.Hour

// ErrInvalidTransition is returned when a reminder cannot move to the
// requested status. It is joined with a schema.ValidationError on status.
var ErrInvalidTransition = errors.New("invalid status transition")

// Service exposes the aggregate queries.
type Service struct {
	engine *records.Engine
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(engine *records.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine: engine,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// FinanceSummary is the income and expense totals for a period.
type FinanceSummary struct {
	TotalIncome        float64            `json:"totalIncome"`
	TotalExpenses      float64            `json:"totalExpenses"`
	NetProfit          float64            `json:"netProfit"`
	IncomeByCategory   []repository.Group `json:"incomeByCategory"`
	ExpensesByCategory []repository.Group `json:"expensesByCategory"`
}

// FinanceSummary totals income and expenses, each filtered on its own date
// field. Either bound may be nil. No matching records yields zeros.
func (s *Service) FinanceSummary(ctx context.Context, owner records.Owner, from, to *time.Time) (FinanceSummary, error) {
	var (
		summary         FinanceSummary
		income, expense decimal.Decimal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		groups, total, err := s.categoryTotals(gctx, owner, models.Income, from, to)
		summary.IncomeByCategory, income = groups, total
		return err
	})
	g.Go(func() error {
		groups, total, err := s.categoryTotals(gctx, owner, models.Expense, from, to)
		summary.ExpensesByCategory, expense = groups, total
		return err
	})
	if err := g.Wait(); err != nil {
		return FinanceSummary{}, err
	}

	summary.TotalIncome = income.InexactFloat64()
	summary.TotalExpenses = expense.InexactFloat64()
	summary.NetProfit = income.Sub(expense).InexactFloat64()
	return summary, nil
}

func (s *Service) categoryTotals(ctx context.Context, owner records.Owner, sc *schema.Schema, from, to *time.Time) ([]repository.Group, decimal.Decimal, error) {
	repo, err := s.engine.For(owner, sc)
	if err != nil {
		return nil, decimal.Zero, err
	}

	var conds []repository.Condition
	if from != nil {
		conds = append(conds, repository.GTE(sc.DateField, *from))
	}
	if to != nil {
		conds = append(conds, repository.LTE(sc.DateField, *to))
	}

	groups, err := repo.Sum(ctx, "amount", "category", conds...)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("summarise %s: %w", sc.Collection, err)
	}
	if groups == nil {
		groups = []repository.Group{}
	}

	// Category totals are summed in decimal so cents do not drift.
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(decimal.NewFromFloat(g.Total))
	}
	return groups, total, nil
}

// LowStock lists inventory items whose current stock is at or below their
// own minimum.
func (s *Service) LowStock(ctx context.Context, owner records.Owner) ([]repository.Document, error) {
	repo, err := s.engine.For(owner, models.InventoryItem)
	if err != nil {
		return nil, err
	}
	items, err := repo.Find(ctx, repository.FieldLTE("currentStock", "minimumStock"))
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return items, nil
}

// Dashboard is the reminder overview.
type Dashboard struct {
	TotalReminders    int64 `json:"totalReminders"`
	PendingReminders  int64 `json:"pendingReminders"`
	OverdueReminders  int64 `json:"overdueReminders"`
	UpcomingReminders int64 `json:"upcomingReminders"`
}

// SchedulerDashboard counts the owner's reminders. Overdue means pending and
// due before now; upcoming means pending and due within UpcomingWindow.
func (s *Service) SchedulerDashboard(ctx context.Context, owner records.Owner) (Dashboard, error) {
	repo, err := s.engine.For(owner, models.Reminder)
	if err != nil {
		return Dashboard{}, err
	}

	now := s.now()
	pending := pendingStatus()

	var d Dashboard
	counts := []struct {
		dst   *int64
		conds []repository.Condition
	}{
		{&d.TotalReminders, nil},
		{&d.PendingReminders, []repository.Condition{pending}},
		{&d.OverdueReminders, []repository.Condition{pending, repository.LT("dueDate", now)}},
		{&d.UpcomingReminders, []repository.Condition{
			pending,
			repository.GTE("dueDate", now),
			repository.LTE("dueDate", now.Add(UpcomingWindow)),
		}},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counts {
		g.Go(func() error {
			n, err := repo.Count(gctx, c.conds...)
			if err != nil {
				return err
			}
			*c.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("scheduler dashboard: %w", err)
	}
	return d, nil
}

// UpcomingReminders lists pending reminders due within UpcomingWindow,
// soonest first, with references expanded.
func (s *Service) UpcomingReminders(ctx context.Context, owner records.Owner) ([]repository.Document, error) {
	repo, err := s.engine.For(owner, models.Reminder)
	if err != nil {
		return nil, err
	}

	now := s.now()
	docs, err := repo.Find(ctx,
		pendingStatus(),
		repository.GTE("dueDate", now),
		repository.LTE("dueDate", now.Add(UpcomingWindow)),
	)
	if err != nil {
		return nil, fmt.Errorf("upcoming reminders: %w", err)
	}
	if err := repo.Expand(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// CompleteReminder moves a pending reminder to Completed and stamps the
// completion time. A reminder that is already completed is returned as is,
// including when a concurrent request completed it first.
func (s *Service) CompleteReminder(ctx context.Context, owner records.Owner, id string) (repository.Document, error) {
	repo, err := s.engine.For(owner, models.Reminder)
	if err != nil {
		return nil, err
	}

	current, err := repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	doc, err := s.complete(ctx, repo, id, current)
	if errors.Is(err, records.ErrNotFound) {
		// The status changed between load and update.
		if current, err = repo.Load(ctx, id); err != nil {
			return nil, err
		}
		if current["status"] != models.StatusCompleted {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTransition,
				schema.Invalid("status", "reminder changed while completing"))
		}
		doc = current
	} else if err != nil {
		return nil, err
	}

	if err := repo.Expand(ctx, []repository.Document{doc}); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) complete(ctx context.Context, repo *records.Repository, id string, current repository.Document) (repository.Document, error) {
	status, _ := current["status"].(string)
	switch models.Reminder.Lifecycle.Normalize(status) {
	case models.StatusCompleted:
		return current, nil
	case models.StatusCancelled:
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransition,
			schema.Invalid("status", "a cancelled reminder cannot be completed"))
	}

	doc, err := repo.UpdateWhere(ctx, id, map[string]any{
		"status":        models.StatusCompleted,
		"completedDate": s.now(),
	}, repository.Eq("status", current["status"]))
	if err != nil {
		return nil, err
	}
	s.logger.Info("reminder completed", zap.String("owner", repo.Owner().String()), zap.String("id", id))
	return doc, nil
}

// pendingStatus matches reminders that are still open, including legacy
// reminders stored as Overdue.
func pendingStatus() repository.Condition {
	return repository.In("status", models.StatusPending, models.StatusOverdue)
}

// Cities lists the distinct cities the owner has recorded environmental
// data for, sorted.
func (s *Service) Cities(ctx context.Context, owner records.Owner) ([]string, error) {
	repo, err := s.engine.For(owner, models.EnvironmentalData)
	if err != nil {
		return nil, err
	}
	values, err := repo.Distinct(ctx, "location.city")
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}

	cities := make([]string, 0, len(values))
	for _, v := range values {
		if city, ok := v.(string); ok && city != "" {
			cities = append(cities, city)
		}
	}
	sort.Strings(cities)
	return cities, nil
}
