// Package recurrence creates the next occurrence of completed recurring
// reminders.
package recurrence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/domain/models"
	"github.com/mamadbah2/livestock/internal/domain/schema"
	"github.com/mamadbah2/livestock/internal/repository"
	"github.com/mamadbah2/livestock/internal/service/records"
)

// carried lists the reminder fields copied onto the next occurrence.
var carried = []string{
	"title", "description", "animalId", "reminderType", "priority",
	"isRecurring", "recurringInterval", "notes",
}

// Service rolls recurring reminders forward.
type Service struct {
	store  repository.Store
	engine *records.Engine
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the recurrence service.
func NewService(store repository.Store, engine *records.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		engine: engine,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Roll finds every completed recurring reminder without a successor, across
// all owners, and creates its next pending occurrence in the same owner's
// records. It returns the number of occurrences created.
func (s *Service) Roll(ctx context.Context) (int, error) {
	due, err := s.store.Find(ctx, models.CollectionReminders, repository.Query{
		Filter: repository.Filter{
			repository.Eq("status", models.StatusCompleted),
			repository.Eq("isRecurring", true),
			repository.Eq("nextOccurrenceId", nil),
		},
		Sort: []repository.SortKey{{Field: "dueDate"}},
	})
	if err != nil {
		return 0, fmt.Errorf("find recurring reminders: %w", err)
	}

	now := s.now()
	created := 0
	var errs []error
	for _, doc := range due {
		ok, err := s.rollOne(ctx, doc, now)
		if err != nil {
			s.logger.Warn("failed to roll reminder", zap.Any("id", doc[schema.FieldID]), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if ok {
			created++
		}
	}
	return created, errors.Join(errs...)
}

func (s *Service) rollOne(ctx context.Context, doc repository.Document, now time.Time) (bool, error) {
	interval, _ := doc["recurringInterval"].(string)
	dueDate, hasDue := doc["dueDate"].(time.Time)
	ownerID, hasOwner := doc[schema.FieldOwner].(primitive.ObjectID)
	id, hasID := doc[schema.FieldID].(primitive.ObjectID)
	if interval == "" || !hasDue || !hasOwner || !hasID {
		return false, nil
	}

	next, ok := NextDue(dueDate, interval, now)
	if !ok {
		return false, nil
	}

	repo, err := s.engine.For(records.OwnerFromID(ownerID), models.Reminder)
	if err != nil {
		return false, err
	}

	payload := map[string]any{"dueDate": next}
	for _, field := range carried {
		if v, ok := doc[field]; ok && v != nil {
			payload[field] = v
		}
	}
	occurrence, err := repo.Create(ctx, payload)
	if err != nil {
		return false, fmt.Errorf("create next occurrence of %s: %w", id.Hex(), err)
	}

	_, err = repo.UpdateWhere(ctx, id.Hex(), map[string]any{
		"nextOccurrenceId": occurrence[schema.FieldID],
	}, repository.Eq("nextOccurrenceId", nil))
	if err != nil {
		// An unlinked occurrence would be created again on the next sweep.
		err = fmt.Errorf("link occurrence of %s: %w", id.Hex(), err)
		if nextID, ok := occurrence[schema.FieldID].(primitive.ObjectID); ok {
			if derr := repo.Delete(ctx, nextID.Hex()); derr != nil {
				err = errors.Join(err, fmt.Errorf("remove unlinked occurrence %s: %w", nextID.Hex(), derr))
			}
		}
		return false, err
	}

	s.logger.Info("recurring reminder rolled",
		zap.String("owner", ownerID.Hex()),
		zap.String("id", id.Hex()),
		zap.Time("nextDue", next),
	)
	return true, nil
}

// NextDue advances due by interval until it falls after now.
func NextDue(due time.Time, interval string, now time.Time) (time.Time, bool) {
	var years, months, days int
	switch interval {
	case models.IntervalDaily:
		days = 1
	case models.IntervalWeekly:
		days = 7
	case models.IntervalMonthly:
		months = 1
	case models.IntervalQuarterly:
		months = 3
	case models.IntervalYearly:
		years = 1
	default:
		return time.Time{}, false
	}

	next := due.AddDate(years, months, days)
	for !next.After(now) {
		next = next.AddDate(years, months, days)
	}
	return next, true
}
