package models

import "github.com/mamadbah2/livestock/internal/domain/schema"

// Resource binds an API path below /api to the schema served there.
type Resource struct {
	Path   string
	Schema *schema.Schema
}

var resources = []Resource{
	{Path: "livestock", Schema: Livestock},
	{Path: "breeding", Schema: BreedingRecord},
	{Path: "feeding", Schema: FeedingRecord},
	{Path: "health", Schema: HealthRecord},
	{Path: "production", Schema: ProductionRecord},
	{Path: "veterinary", Schema: VeterinaryRecord},
	{Path: "sales/animals", Schema: AnimalSale},
	{Path: "sales/products", Schema: ProductSale},
	{Path: "inventory", Schema: InventoryItem},
	{Path: "finance/expenses", Schema: Expense},
	{Path: "finance/income", Schema: Income},
	{Path: "staff/employees", Schema: Employee},
	{Path: "staff/tasks", Schema: Task},
	{Path: "staff/attendance", Schema: Attendance},
	{Path: "environment", Schema: EnvironmentalData},
	{Path: "scheduler", Schema: Reminder},
}

// Resources returns every owner-scoped resource family in routing order.
func Resources() []Resource {
	return append([]Resource(nil), resources...)
}

// Lookup finds the schema served at path.
func Lookup(path string) (*schema.Schema, bool) {
	for _, r := range resources {
		if r.Path == path {
			return r.Schema, true
		}
	}
	return nil, false
}
