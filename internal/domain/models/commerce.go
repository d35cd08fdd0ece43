package models

import "github.com/mamadbah2/livestock/internal/domain/schema"

const (
	CollectionAnimalSales  = "animalsales"
	CollectionProductSales = "productsales"
	CollectionInventory    = "inventoryitems"
	CollectionExpenses     = "expenses"
	CollectionIncome       = "incomes"
)

var paymentMethods = []string{"Cash", "Bank Transfer", "Check", "Credit Card", "Other"}

var AnimalSale = &schema.Schema{
	Label:      "Animal sale",
	Collection: CollectionAnimalSales,
	Owned:      true,
	Fields: []schema.Field{
		schema.Reference("animalId").Required(),
		schema.Date("saleDate").Required(),
		schema.Text("buyerName").Required(),
		schema.Text("buyerContact"),
		schema.Number("salePrice").Required().Min(0),
		schema.Enum("saleReason", "Breeding", "Meat", "Dairy", "Wool", "Other").Required(),
		schema.Text("notes"),
	},
	Refs: []schema.Ref{animalRef("animalId")},
	Sort: newestFirst,
}

var ProductSale = &schema.Schema{
	Label:      "Product sale",
	Collection: CollectionProductSales,
	Owned:      true,
	Fields: []schema.Field{
		schema.Reference("animalId"),
		schema.Date("saleDate").Required(),
		schema.Enum("productType", "Milk", "Eggs", "Meat", "Wool", "Cheese", "Butter", "Other").Required(),
		schema.Number("quantity").Required().Min(0),
		schema.Enum("unit", "Liters", "Pieces", "Kilograms", "Grams", "Pounds", "Other").Required(),
		schema.Number("unitPrice").Required().Min(0),
		schema.Number("totalPrice").Required().Min(0),
		schema.Text("buyerName").Required(),
		schema.Text("buyerContact"),
		schema.Text("notes"),
	},
	Refs: []schema.Ref{animalRef("animalId")},
	Sort: newestFirst,
}

// InventoryItem is low on stock when currentStock <= minimumStock.
var InventoryItem = &schema.Schema{
	Label:      "Inventory item",
	Collection: CollectionInventory,
	Owned:      true,
	Fields: []schema.Field{
		schema.Text("itemName").Required(),
		schema.Enum("category", "Feed", "Medicine", "Equipment", "Supplies", "Other").Required(),
		schema.Number("currentStock").Required().Min(0),
		schema.Enum("unit", "Kilograms", "Liters", "Pieces", "Bags", "Bottles", "Other").Required(),
		schema.Number("minimumStock").Min(0).Default(0.0),
		schema.Number("unitCost").Min(0),
		schema.Text("supplier"),
		schema.Text("supplierContact"),
		schema.Date("expiryDate"),
		schema.Text("notes"),
	},
	Sort: newestFirst,
}

var Expense = &schema.Schema{
	Label:      "Expense",
	Collection: CollectionExpenses,
	Owned:      true,
	Fields: []schema.Field{
		schema.Date("expenseDate").Required(),
		schema.Enum("category", "Feed", "Medicine", "Equipment", "Labor", "Veterinary", "Utilities", "Transport", "Other").Required(),
		schema.Text("description").Required(),
		schema.Number("amount").Required().Min(0),
		schema.Reference("animalId"),
		schema.Text("supplier"),
		schema.Enum("paymentMethod", paymentMethods...).Default("Cash"),
		schema.Text("notes"),
	},
	Refs:      []schema.Ref{animalRef("animalId")},
	Sort:      newestFirst,
	DateField: "expenseDate",
}

var Income = &schema.Schema{
	Label:      "Income",
	Collection: CollectionIncome,
	Owned:      true,
	Fields: []schema.Field{
		schema.Date("incomeDate").Required(),
		schema.Enum("category", "Animal Sale", "Product Sale", "Milk", "Eggs", "Meat", "Wool", "Other").Required(),
		schema.Text("description").Required(),
		schema.Number("amount").Required().Min(0),
		schema.Reference("animalId"),
		schema.Text("buyer"),
		schema.Enum("paymentMethod", paymentMethods...).Default("Cash"),
		schema.Text("notes"),
	},
	Refs:      []schema.Ref{animalRef("animalId")},
	Sort:      newestFirst,
	DateField: "incomeDate",
}
