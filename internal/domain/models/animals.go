package models

import "github.com/mamadbah2/livestock/internal/domain/schema"

// Collections use the names of the existing production database.
const (
	CollectionLivestock  = "livestocks"
	CollectionBreeding   = "breedingrecords"
	CollectionFeeding    = "feedingrecords"
	CollectionHealth     = "healthrecords"
	CollectionProduction = "productionrecords"
	CollectionVeterinary = "veterinaryrecords"
)

var (
	animalProjection   = []string{"name", "species", "breed"}
	employeeProjection = []string{"name", "position"}
)

func animalRef(field string) schema.Ref {
	return schema.Ref{Field: field, Collection: CollectionLivestock, Projection: animalProjection}
}

func employeeRef(field string) schema.Ref {
	return schema.Ref{Field: field, Collection: CollectionEmployees, Projection: employeeProjection}
}

var newestFirst = schema.Sort{Field: schema.FieldCreatedAt, Desc: true}

// Livestock is an individual animal.
var Livestock = &schema.Schema{
	Label:      "Livestock",
	Collection: CollectionLivestock,
	Owned:      true,
	Fields: []schema.Field{
		schema.Text("name").Required(),
		schema.Text("species").Required(),
		schema.Text("breed").Required(),
		schema.Date("dateOfBirth").Required(),
		schema.Enum("gender", "Male", "Female").Required(),
		schema.Enum("healthStatus", "Healthy", "Sick", "Under Treatment", "Recovered").Required().Default("Healthy"),
	},
	Sort: newestFirst,
}

var BreedingRecord = &schema.Schema{
	Label:      "Breeding record",
	Collection: CollectionBreeding,
	Owned:      true,
	Fields: []schema.Field{
		schema.Reference("animalId").Required(),
		schema.Reference("partnerAnimalId").Required(),
		schema.Date("breedingDate").Required(),
		schema.Enum("outcome", "Successful", "Unsuccessful", "Pending", "Unknown").Required(),
		schema.Text("notes"),
	},
	Refs: []schema.Ref{animalRef("animalId"), animalRef("partnerAnimalId")},
	Sort: newestFirst,
}

var FeedingRecord = &schema.Schema{
	Label:      "Feeding record",
	Collection: CollectionFeeding,
	Owned:      true,
	Fields: []schema.Field{
		schema.Reference("animalId").Required(),
		schema.Text("feedType").Required(),
		schema.Number("quantity").Required().Min(0),
		schema.Date("date").Required(),
		schema.Text("notes"),
	},
	Refs: []schema.Ref{animalRef("animalId")},
	Sort: newestFirst,
}

var HealthRecord = &schema.Schema{
	Label:      "Health record",
	Collection: CollectionHealth,
	Owned:      true,
	Fields: []schema.Field{
		schema.Reference("animalId").Required(),
		schema.Date("checkupDate").Required(),
		schema.Text("diagnosis").Required(),
		schema.Text("treatment").Required(),
		schema.Text("vetName").Required(),
		schema.Text("notes"),
	},
	Refs: []schema.Ref{animalRef("animalId")},
	Sort: newestFirst,
}

var ProductionRecord = &schema.Schema{
	Label:      "Production record",
	Collection: CollectionProduction,
	Owned:      true,
	Fields: []schema.Field{
		schema.Reference("animalId").Required(),
		schema.Date("date").Required(),
		schema.Text("productType").Required(),
		schema.Number("quantity").Required().Min(0),
		schema.Text("notes"),
	},
	Refs: []schema.Ref{animalRef("animalId")},
	Sort: newestFirst,
}

var VeterinaryRecord = &schema.Schema{
	Label:      "Veterinary record",
	Collection: CollectionVeterinary,
	Owned:      true,
	Fields: []schema.Field{
		schema.Reference("animalId").Required(),
		schema.Date("appointmentDate").Required(),
		schema.Text("vetName").Required(),
		schema.Text("vetContact"),
		schema.Enum("visitType", "Routine Checkup", "Emergency", "Vaccination", "Treatment", "Surgery", "Other").
			Required().Default("Routine Checkup"),
		schema.Text("diagnosis").Required(),
		schema.Text("treatment").Required(),
		schema.Text("medication"),
		schema.Text("dosage"),
		schema.Date("nextVisitDate"),
		schema.Number("cost").Min(0),
		schema.Text("notes"),
	},
	Refs: []schema.Ref{animalRef("animalId")},
	Sort: newestFirst,
}
