package models

import "github.com/mamadbah2/livestock/internal/domain/schema"

const (
	CollectionEmployees  = "employees"
	CollectionTasks      = "tasks"
	CollectionAttendance = "attendances"
)

var priorities = []string{"Low", "Medium", "High", "Urgent"}

var soonestDue = schema.Sort{Field: "dueDate"}

var Employee = &schema.Schema{
	Label:      "Employee",
	Collection: CollectionEmployees,
	Owned:      true,
	Fields: []schema.Field{
		schema.Text("name").Required(),
		schema.Text("position").Required(),
		schema.Email("email").Required(),
		schema.Text("phone").Required(),
		schema.Date("hireDate").Required(),
		schema.Number("salary").Min(0),
		schema.Enum("status", "Active", "Inactive", "On Leave").Default("Active"),
		schema.StringList("skills"),
		schema.Text("notes"),
	},
	Sort: newestFirst,
}

// TaskInProgress is the status of a task that has been started.
const TaskInProgress = "In Progress"

// Task durations are in minutes.
var Task = &schema.Schema{
	Label:      "Task",
	Collection: CollectionTasks,
	Owned:      true,
	Fields: []schema.Field{
		schema.Text("title").Required(),
		schema.Text("description"),
		schema.Reference("assignedTo"),
		schema.Reference("animalId"),
		schema.Enum("taskType", "Feeding", "Milking", "Cleaning", "Health Check", "Breeding", "Vaccination", "Other").Required(),
		schema.Enum("priority", priorities...).Default("Medium"),
		schema.Enum("status", StatusPending, TaskInProgress, StatusCompleted, StatusCancelled).Default(StatusPending),
		schema.Date("dueDate").Required(),
		schema.Date("completedDate"),
		schema.Number("estimatedDuration").Min(0),
		schema.Number("actualDuration").Min(0),
		schema.Text("notes"),
	},
	Refs: []schema.Ref{employeeRef("assignedTo"), animalRef("animalId")},
	Sort: soonestDue,
	Filters: []schema.ListFilter{
		{Param: "status", Field: "status"},
		{Param: "assignedTo", Field: "assignedTo", Match: schema.MatchRef},
	},
	DateField: "dueDate",
	Lifecycle: &schema.Lifecycle{
		Field: "status",
		Transitions: map[string][]string{
			StatusPending:  {TaskInProgress, StatusCompleted, StatusCancelled},
			TaskInProgress: {StatusCompleted, StatusCancelled},
		},
		Completed:  StatusCompleted,
		StampField: "completedDate",
	},
}

var Attendance = &schema.Schema{
	Label:      "Attendance record",
	Collection: CollectionAttendance,
	Owned:      true,
	Fields: []schema.Field{
		schema.Reference("employeeId").Required(),
		schema.Date("date").Required(),
		schema.Date("checkIn"),
		schema.Date("checkOut"),
		schema.Number("hoursWorked").Min(0).Max(24),
		schema.Enum("status", "Present", "Absent", "Late", "Half Day", "On Leave").Required(),
		schema.Text("notes"),
	},
	Refs: []schema.Ref{employeeRef("employeeId")},
	Sort: schema.Sort{Field: "date", Desc: true},
	Filters: []schema.ListFilter{
		{Param: "employeeId", Field: "employeeId", Match: schema.MatchRef},
	},
	DateField: "date",
}
