// Command seed fills a demo account with realistic farm records.
//
// Usage:
//
//	STORAGE_DRIVER=mongodb MONGODB_URI=... JWT_SECRET=... go run ./cmd/seed -animals 50 -reset
//
// Records go through the records engine, so they obey the same schema rules as
// API writes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/config"
	"github.com/mamadbah2/livestock/internal/domain/models"
	"github.com/mamadbah2/livestock/internal/domain/schema"
	"github.com/mamadbah2/livestock/internal/repository"
	"github.com/mamadbah2/livestock/internal/repository/store"
	authsvc "github.com/mamadbah2/livestock/internal/service/auth"
	"github.com/mamadbah2/livestock/internal/service/records"
	"github.com/mamadbah2/livestock/pkg/logger"
)

const (
	demoName     = "Test User"
	demoEmail    = "test@example.com"
	demoPassword = "password123"
	demoPhone    = "1234567890"
)

var breeds = map[string][]string{
	"Cattle":  {"Holstein", "Angus", "Hereford"},
	"Sheep":   {"Merino", "Suffolk", "Dorset"},
	"Goat":    {"Boer", "Nubian", "Alpine"},
	"Pig":     {"Yorkshire", "Duroc", "Berkshire"},
	"Chicken": {"Leghorn", "Rhode Island Red"},
}

var species = []string{"Cattle", "Sheep", "Goat", "Pig", "Chicken"}

type product struct{ kind, unit string }

var products = map[string]product{
	"Cattle":  {"Milk", "Liters"},
	"Sheep":   {"Wool", "Kilograms"},
	"Goat":    {"Milk", "Liters"},
	"Pig":     {"Meat", "Kilograms"},
	"Chicken": {"Eggs", "Pieces"},
}

var treatments = map[string]string{
	"Mastitis":         "Antibiotic treatment and udder care",
	"Lameness":         "Hoof trimming and anti-inflammatory medication",
	"Pneumonia":        "Course of antibiotics and supportive care",
	"Scours":           "Electrolytes and fluid therapy",
	"Bloat":            "Stomach tube and anti-foaming agent",
	"Vaccination":      "Routine annual vaccination administered",
	"Parasite Control": "Deworming medication administered",
}

var inventory = []map[string]any{
	{"itemName": "Cattle Feed", "category": "Feed", "unit": "Kilograms"},
	{"itemName": "Chicken Feed", "category": "Feed", "unit": "Kilograms"},
	{"itemName": "Sheep Feed", "category": "Feed", "unit": "Kilograms"},
	{"itemName": "Mineral Blocks", "category": "Supplies", "unit": "Pieces"},
	{"itemName": "Hay Bales", "category": "Feed", "unit": "Pieces"},
	{"itemName": "Amoxicillin", "category": "Medicine", "unit": "Bottles"},
	{"itemName": "Ivermectin", "category": "Medicine", "unit": "Bottles"},
	{"itemName": "Fencing Wire", "category": "Equipment", "unit": "Pieces"},
	{"itemName": "Water Trough", "category": "Equipment", "unit": "Pieces"},
	{"itemName": "Milking Machine Liners", "category": "Equipment", "unit": "Pieces"},
}

var (
	firstNames   = []string{"Bessie", "Daisy", "Clover", "Rosie", "Bella", "Duke", "Buttercup", "Nessa", "Finn", "Maple", "Hazel", "Bruno"}
	lastNames    = []string{"Barlow", "Hughes", "Okafor", "Diallo", "Murphy", "Evans", "Camara", "Price"}
	positions    = []string{"Farm Manager", "Livestock Handler", "Veterinary Technician", "Farm Hand", "Herdsman"}
	feedTypes    = []string{"Grain", "Hay", "Silage", "Pasture", "Concentrates"}
	cities       = []string{"Leeds", "York", "Harrogate", "Skipton", "Ripon"}
	weather      = []string{"Sunny", "Cloudy", "Rainy", "Foggy"}
	taskTitles   = []string{"Repair fence in the north pasture", "Move cattle to the lower field", "Clean and disinfect the milking parlor", "Organize the feed storage shed", "Perform health checks on newborn calves"}
	reminderList = []string{"Schedule annual herd health check", "Check fences for storm damage", "Order new supply of cattle feed", "Rotate sheep to new pasture", "Plan for upcoming breeding season"}
)

func main() {
	animals := flag.Int("animals", 40, "number of animals to create")
	reset := flag.Bool("reset", false, "delete the demo account's existing records first")
	envFile := flag.String("env", "", "optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Must(logger.New(cfg.Server.Development())).Named("seed")
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	db, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := db.Close(ctx); err != nil {
			log.Error("failed to close storage", zap.Error(err))
		}
	}()

	owner, err := demoOwner(ctx, authsvc.NewService(db, cfg.Auth, log.Named("auth")))
	if err != nil {
		log.Fatal("failed to prepare demo user", zap.Error(err))
	}

	s := &seeder{
		engine: records.NewEngine(db, log.Named("records")),
		owner:  owner,
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 42)),
		now:    time.Now().UTC(),
		logger: log,
	}

	if *reset {
		if err := s.reset(ctx); err != nil {
			log.Fatal("failed to reset demo records", zap.Error(err))
		}
	}
	if err := s.run(ctx, *animals); err != nil {
		log.Fatal("seeding failed", zap.Error(err))
	}
	log.Info("seeding completed", zap.String("email", demoEmail), zap.String("owner", owner.String()))
}

// demoOwner signs up the demo account, or signs in when it already exists.
func demoOwner(ctx context.Context, auth *authsvc.Service) (records.Owner, error) {
	session, err := auth.SignUp(ctx, authsvc.SignUpInput{
		Name: demoName, Email: demoEmail, Password: demoPassword, PhoneNumber: demoPhone,
	})
	if errors.Is(err, authsvc.ErrEmailTaken) {
		session, err = auth.SignIn(ctx, authsvc.SignInInput{Email: demoEmail, Password: demoPassword})
	}
	if err != nil {
		return records.Owner{}, err
	}
	return auth.Verify(session.Token)
}

type seeder struct {
	engine *records.Engine
	owner  records.Owner
	rng    *rand.Rand
	now    time.Time
	logger *zap.Logger
}

func (s *seeder) reset(ctx context.Context) error {
	for _, res := range models.Resources() {
		repo, err := s.engine.For(s.owner, res.Schema)
		if err != nil {
			return err
		}
		docs, err := repo.Find(ctx)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if err := repo.Delete(ctx, hex(doc)); err != nil {
				return fmt.Errorf("delete %s: %w", res.Path, err)
			}
		}
		if len(docs) > 0 {
			s.logger.Info("cleared records", zap.String("resource", res.Path), zap.Int("count", len(docs)))
		}
	}
	return nil
}

func (s *seeder) run(ctx context.Context, animals int) error {
	herd, err := s.livestock(ctx, animals)
	if err != nil {
		return err
	}
	employees, err := s.staff(ctx, herd)
	if err != nil {
		return err
	}

	steps := []struct {
		name string
		fn   func(context.Context, []repository.Document) error
	}{
		{"breeding", s.breeding},
		{"animal records", s.animalRecords},
		{"inventory", s.inventory},
		{"finance", s.finance},
		{"environment", s.environment},
	}
	for _, step := range steps {
		if err := step.fn(ctx, herd); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	for _, emp := range employees {
		for d := 0; d < 5; d++ {
			status := pick(s.rng, []string{"Present", "Present", "Present", "Late", "Absent"})
			payload := map[string]any{
				"employeeId": hex(emp),
				"date":       s.now.AddDate(0, 0, -d),
				"status":     status,
			}
			if status != "Absent" {
				payload["hoursWorked"] = float64(6 + s.rng.IntN(4))
			}
			if _, err := s.create(ctx, models.Attendance, payload); err != nil {
				return fmt.Errorf("attendance: %w", err)
			}
		}
	}
	return nil
}

func (s *seeder) create(ctx context.Context, sc *schema.Schema, payload map[string]any) (repository.Document, error) {
	repo, err := s.engine.For(s.owner, sc)
	if err != nil {
		return nil, err
	}
	return repo.Create(ctx, payload)
}

func (s *seeder) livestock(ctx context.Context, n int) ([]repository.Document, error) {
	herd := make([]repository.Document, 0, n)
	for i := 0; i < n; i++ {
		sp := pick(s.rng, species)
		doc, err := s.create(ctx, models.Livestock, map[string]any{
			"name":         pick(s.rng, firstNames),
			"species":      sp,
			"breed":        pick(s.rng, breeds[sp]),
			"dateOfBirth":  s.past(5 * 365),
			"gender":       pick(s.rng, []string{"Male", "Female"}),
			"healthStatus": pick(s.rng, []string{"Healthy", "Healthy", "Sick", "Under Treatment", "Recovered"}),
		})
		if err != nil {
			return nil, fmt.Errorf("livestock: %w", err)
		}
		herd = append(herd, doc)
	}
	s.logger.Info("livestock created", zap.Int("count", len(herd)))
	return herd, nil
}

func (s *seeder) breeding(ctx context.Context, herd []repository.Document) error {
	bySpecies := make(map[string][2][]repository.Document)
	for _, animal := range herd {
		sp := animal["species"].(string)
		pair := bySpecies[sp]
		if animal["gender"] == "Male" {
			pair[0] = append(pair[0], animal)
		} else {
			pair[1] = append(pair[1], animal)
		}
		bySpecies[sp] = pair
	}

	created := 0
	for _, pair := range bySpecies {
		males, females := pair[0], pair[1]
		if len(males) == 0 || len(females) == 0 {
			continue
		}
		for i := 0; i < len(females); i++ {
			if _, err := s.create(ctx, models.BreedingRecord, map[string]any{
				"animalId":        hex(females[i]),
				"partnerAnimalId": hex(pick(s.rng, males)),
				"breedingDate":    s.past(365),
				"outcome":         pick(s.rng, []string{"Successful", "Unsuccessful", "Pending"}),
			}); err != nil {
				return err
			}
			created++
		}
	}
	s.logger.Info("breeding records created", zap.Int("count", created))
	return nil
}

func (s *seeder) animalRecords(ctx context.Context, herd []repository.Document) error {
	diagnoses := make([]string, 0, len(treatments))
	for d := range treatments {
		diagnoses = append(diagnoses, d)
	}

	for _, animal := range herd {
		id := hex(animal)
		sp := animal["species"].(string)
		diagnosis := pick(s.rng, diagnoses)

		if _, err := s.create(ctx, models.FeedingRecord, map[string]any{
			"animalId": id,
			"feedType": pick(s.rng, feedTypes),
			"quantity": float64(5 + s.rng.IntN(16)),
			"date":     s.past(14),
		}); err != nil {
			return err
		}
		if _, err := s.create(ctx, models.ProductionRecord, map[string]any{
			"animalId":    id,
			"date":        s.past(14),
			"productType": products[sp].kind,
			"quantity":    float64(10 + s.rng.IntN(21)),
		}); err != nil {
			return err
		}
		if _, err := s.create(ctx, models.HealthRecord, map[string]any{
			"animalId":    id,
			"checkupDate": s.past(90),
			"diagnosis":   diagnosis,
			"treatment":   treatments[diagnosis],
			"vetName":     "Dr. " + pick(s.rng, lastNames),
		}); err != nil {
			return err
		}
		if _, err := s.create(ctx, models.VeterinaryRecord, map[string]any{
			"animalId":        id,
			"appointmentDate": s.past(30),
			"vetName":         "Dr. " + pick(s.rng, lastNames),
			"diagnosis":       diagnosis,
			"treatment":       treatments[diagnosis],
			"cost":            money(s.rng, 40, 250),
		}); err != nil {
			return err
		}
		if _, err := s.create(ctx, models.Reminder, map[string]any{
			"animalId":          id,
			"title":             pick(s.rng, reminderList),
			"reminderType":      "Other",
			"dueDate":           s.future(30),
			"isRecurring":       s.rng.IntN(4) == 0,
			"recurringInterval": models.IntervalMonthly,
		}); err != nil {
			return err
		}
	}
	s.logger.Info("per-animal records created", zap.Int("animals", len(herd)))
	return nil
}

func (s *seeder) staff(ctx context.Context, herd []repository.Document) ([]repository.Document, error) {
	employees := make([]repository.Document, 0, len(lastNames))
	for i := 0; i < 5; i++ {
		first, last := pick(s.rng, firstNames), lastNames[i%len(lastNames)]
		emp, err := s.create(ctx, models.Employee, map[string]any{
			"name":     first + " " + last,
			"position": pick(s.rng, positions),
			"email":    fmt.Sprintf("%s.%s@farm.com", strings.ToLower(first), strings.ToLower(last)),
			"phone":    fmt.Sprintf("07%09d", s.rng.IntN(1_000_000_000)),
			"hireDate": s.past(3 * 365),
			"salary":   money(s.rng, 1800, 3200),
			"skills":   []any{pick(s.rng, feedTypes), "Animal handling"},
		})
		if err != nil {
			return nil, fmt.Errorf("employee: %w", err)
		}
		employees = append(employees, emp)

		for t := 0; t < 3; t++ {
			payload := map[string]any{
				"title":      pick(s.rng, taskTitles),
				"assignedTo": hex(emp),
				"taskType":   pick(s.rng, []string{"Feeding", "Cleaning", "Health Check", "Milking"}),
				"dueDate":    s.future(21),
			}
			if len(herd) > 0 {
				payload["animalId"] = hex(pick(s.rng, herd))
			}
			if _, err := s.create(ctx, models.Task, payload); err != nil {
				return nil, fmt.Errorf("task: %w", err)
			}
		}
	}
	s.logger.Info("staff created", zap.Int("employees", len(employees)))
	return employees, nil
}

func (s *seeder) inventory(ctx context.Context, _ []repository.Document) error {
	for _, item := range inventory {
		payload := make(map[string]any, len(item)+2)
		for k, v := range item {
			payload[k] = v
		}
		payload["currentStock"] = float64(10 + s.rng.IntN(190))
		payload["minimumStock"] = 25.0
		if _, err := s.create(ctx, models.InventoryItem, payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) finance(ctx context.Context, herd []repository.Document) error {
	for i := 0; i < 40; i++ {
		category := pick(s.rng, []string{"Feed", "Medicine", "Equipment", "Labor", "Utilities"})
		if _, err := s.create(ctx, models.Expense, map[string]any{
			"expenseDate": s.past(365),
			"category":    category,
			"description": "Purchase of " + strings.ToLower(category),
			"amount":      money(s.rng, 20, 400),
		}); err != nil {
			return err
		}
	}

	for i := 0; i < len(herd)/8 && len(herd) > 0; i++ {
		animal := pick(s.rng, herd)
		price := money(s.rng, 500, 5000)
		sold := s.past(365)
		if _, err := s.create(ctx, models.AnimalSale, map[string]any{
			"animalId":   hex(animal),
			"saleDate":   sold,
			"buyerName":  pick(s.rng, firstNames) + " " + pick(s.rng, lastNames),
			"salePrice":  price,
			"saleReason": "Breeding",
		}); err != nil {
			return err
		}
		if _, err := s.create(ctx, models.Income, map[string]any{
			"incomeDate":  sold,
			"category":    "Animal Sale",
			"description": fmt.Sprintf("Sale of %s %s", animal["breed"], animal["species"]),
			"amount":      price,
			"animalId":    hex(animal),
		}); err != nil {
			return err
		}
	}

	for i := 0; i < 30; i++ {
		p := products[pick(s.rng, species)]
		quantity := float64(10 + s.rng.IntN(91))
		unitPrice := money(s.rng, 1, 10)
		total := float64(int64(quantity*unitPrice*100+0.5)) / 100
		sold := s.past(365)
		if _, err := s.create(ctx, models.ProductSale, map[string]any{
			"productType": p.kind,
			"quantity":    quantity,
			"unit":        p.unit,
			"unitPrice":   unitPrice,
			"totalPrice":  total,
			"saleDate":    sold,
			"buyerName":   pick(s.rng, firstNames) + " " + pick(s.rng, lastNames),
		}); err != nil {
			return err
		}
		if _, err := s.create(ctx, models.Income, map[string]any{
			"incomeDate":  sold,
			"category":    "Product Sale",
			"description": fmt.Sprintf("Sale of %.0f %s of %s", quantity, p.unit, p.kind),
			"amount":      total,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) environment(ctx context.Context, _ []repository.Document) error {
	for i := 0; i < 30; i++ {
		if _, err := s.create(ctx, models.EnvironmentalData, map[string]any{
			"location":         map[string]any{"city": pick(s.rng, cities)},
			"date":             s.past(60),
			"temperature":      float64(10 + s.rng.IntN(26)),
			"humidity":         float64(30 + s.rng.IntN(61)),
			"weatherCondition": pick(s.rng, weather),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) past(days int) time.Time {
	return s.now.Add(-time.Duration(s.rng.Int64N(int64(days)*int64(24*time.Hour)))).Truncate(time.Minute)
}

func (s *seeder) future(days int) time.Time {
	return s.now.Add(time.Duration(1 + s.rng.Int64N(int64(days)*int64(24*time.Hour)))).Truncate(time.Minute)
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

// money returns an amount between lo and hi rounded to cents.
func money(rng *rand.Rand, lo, hi float64) float64 {
	v := lo + rng.Float64()*(hi-lo)
	return float64(int64(v*100+0.5)) / 100
}

func hex(doc repository.Document) string {
	id, _ := doc[schema.FieldID].(primitive.ObjectID)
	return id.Hex()
}
