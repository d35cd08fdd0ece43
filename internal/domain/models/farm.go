package models

import "github.com/mamadbah2/livestock/internal/domain/schema"

const (
	CollectionEnvironment = "environmentaldata"
	CollectionReminders   = "reminders"
)

// Reminder statuses. Overdue is derived from a Pending reminder's due date
// and is never stored.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// StatusOverdue may still be stored on reminders written before Overdue
// became derived. Such reminders are treated as Pending.
const StatusOverdue = "Overdue"

// Recurrence intervals.
const (
	IntervalDaily     = "Daily"
	IntervalWeekly    = "Weekly"
	IntervalMonthly   = "Monthly"
	IntervalQuarterly = "Quarterly"
	IntervalYearly    = "Yearly"
)

var EnvironmentalData = &schema.Schema{
	Label:      "Environmental data",
	Collection: CollectionEnvironment,
	Owned:      true,
	Fields: []schema.Field{
		schema.Object("location",
			schema.Text("city").Required(),
			schema.Object("coordinates",
				schema.Number("latitude").Min(-90).Max(90),
				schema.Number("longitude").Min(-180).Max(180),
			),
		).Required(),
		schema.Date("date").Required(),
		schema.Number("temperature").Required(),
		schema.Number("humidity").Required().Min(0).Max(100),
		schema.Number("waterLevel").Min(0).Max(100),
		schema.Number("rainfall").Min(0),
		schema.Number("windSpeed").Min(0),
		schema.Enum("weatherCondition", "Sunny", "Cloudy", "Rainy", "Stormy", "Foggy", "Snowy").Required(),
		schema.Enum("airQuality", "Excellent", "Good", "Moderate", "Poor", "Hazardous"),
		schema.Text("notes"),
	},
	Sort: schema.Sort{Field: "date", Desc: true},
	Filters: []schema.ListFilter{
		{Param: "city", Field: "location.city", Match: schema.MatchContains},
	},
	DateField: "date",
}

var Reminder = &schema.Schema{
	Label:      "Reminder",
	Collection: CollectionReminders,
	Owned:      true,
	Fields: []schema.Field{
		schema.Text("title").Required(),
		schema.Text("description"),
		schema.Reference("animalId"),
		schema.Enum("reminderType", "Vaccination", "Breeding Check", "Feeding", "Health Check", "Milking", "Cleaning", "Other").Required(),
		schema.Date("dueDate").Required(),
		schema.Enum("priority", priorities...).Default("Medium"),
		schema.Enum("status", StatusPending, StatusCompleted, StatusCancelled).Default(StatusPending),
		schema.Bool("isRecurring").Default(false),
		schema.Enum("recurringInterval", IntervalDaily, IntervalWeekly, IntervalMonthly, IntervalQuarterly, IntervalYearly),
		schema.Date("completedDate"),
		schema.Reference("nextOccurrenceId"),
		schema.Text("notes"),
	},
	Refs: []schema.Ref{animalRef("animalId")},
	Sort: soonestDue,
	Filters: []schema.ListFilter{
		{Param: "status", Field: "status"},
		{Param: "reminderType", Field: "reminderType"},
	},
	DateField: "dueDate",
	Lifecycle: &schema.Lifecycle{
		Field: "status",
		Transitions: map[string][]string{
			StatusPending: {StatusCompleted, StatusCancelled},
		},
		Aliases:    map[string]string{StatusOverdue: StatusPending},
		Completed:  StatusCompleted,
		StampField: "completedDate",
	},
}
