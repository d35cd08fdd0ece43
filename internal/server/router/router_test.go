package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/livestock/internal/config"
	"github.com/mamadbah2/livestock/internal/repository/memory"
	"github.com/mamadbah2/livestock/internal/server/handlers"
	"github.com/mamadbah2/livestock/internal/service/auth"
	"github.com/mamadbah2/livestock/internal/service/export"
	"github.com/mamadbah2/livestock/internal/service/records"
	"github.com/mamadbah2/livestock/internal/service/reporting"
	"github.com/mamadbah2/livestock/pkg/clients/weather"
)

type stubWeather struct{}

func (stubWeather) Forecast(_ context.Context, city string) (*weather.Forecast, error) {
	if city == "Atlantis" {
		return nil, weather.ErrCityNotFound
	}
	return &weather.Forecast{City: city, Forecast: make([]weather.DayView, weather.ForecastDays)}, nil
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T, wx weather.Client) *testAPI {
	t.Helper()
	store := memory.New()
	engine := records.NewEngine(store, nil)
	authSvc := auth.NewService(store, config.AuthConfig{JWTSecret: "router-test", TokenTTL: time.Hour}, nil)

	r := New(Deps{
		Engine:    engine,
		Auth:      authSvc,
		Reporting: reporting.NewService(engine, nil),
		Export:    export.NewService(engine, nil, nil),
		Weather:   wx,
		Options:   handlers.Options{ExposeErrors: true},
	}, nil)
	return &testAPI{t: t, handler: r}
}

func (a *testAPI) do(method, path, token string, body any) (int, map[string]any, []any) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)

	var obj map[string]any
	var list []any
	if bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("[")) {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &list), w.Body.String())
	} else if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &obj), w.Body.String())
	}
	return w.Code, obj, list
}

func (a *testAPI) signUp(email string) string {
	a.t.Helper()
	status, body, _ := a.do(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name": "Farmer", "email": email, "password": "secret1",
	})
	require.Equal(a.t, http.StatusCreated, status, body)
	token, _ := body["token"].(string)
	require.NotEmpty(a.t, token)
	return token
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t, nil)
	status, body, _ := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body, _ = api.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Route not found", body["message"])
}

func TestRequiresToken(t *testing.T) {
	api := newTestAPI(t, nil)
	status, _, _ := api.do(http.MethodGet, "/api/livestock", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = api.do(http.MethodGet, "/api/livestock", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signUp("jo@example.com")

	status, _, _ := api.do(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name": "Again", "email": "JO@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body, _ := api.do(http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email": "jo@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	status, _, _ = api.do(http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email": "jo@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body, _ = api.do(http.MethodPost, "/api/auth/signin", "", map[string]any{"email": "jo@example.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []any{map[string]any{"field": "password", "message": "is required"}}, body["errors"])

	status, body, _ = api.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "jo@example.com", body["email"])
	assert.NotContains(t, body, "password")
}

func TestLivestockAndFeedingScenario(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signUp("bessie@example.com")

	status, animal, _ := api.do(http.MethodPost, "/api/livestock", token, map[string]any{
		"name": "Bessie", "species": "Cattle", "breed": "Holstein",
		"dateOfBirth": "2020-01-01", "gender": "Female", "healthStatus": "Healthy",
	})
	require.Equal(t, http.StatusCreated, status, animal)
	animalID, _ := animal["_id"].(string)
	require.NotEmpty(t, animalID)

	status, body, _ := api.do(http.MethodPost, "/api/feeding", token, map[string]any{
		"animalId": animalID, "feedType": "Hay", "quantity": -5, "date": "2024-05-01",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, []any{map[string]any{"field": "quantity", "message": "must be at least 0"}}, body["errors"])

	status, _, list := api.do(http.MethodGet, "/api/feeding", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list)

	status, feeding, _ := api.do(http.MethodPost, "/api/feeding", token, map[string]any{
		"animalId": animalID, "feedType": "Hay", "quantity": 15, "date": "2024-05-01",
	})
	require.Equal(t, http.StatusCreated, status, feeding)

	status, _, list = api.do(http.MethodGet, "/api/feeding", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	record := list[0].(map[string]any)
	assert.Equal(t, 15.0, record["quantity"])
	assert.Equal(t, map[string]any{
		"_id": animalID, "name": "Bessie", "species": "Cattle", "breed": "Holstein",
	}, record["animalId"])

	status, got, _ := api.do(http.MethodGet, "/api/livestock/"+animalID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2020-01-01T00:00:00Z", got["dateOfBirth"])
	assert.NotEmpty(t, got["createdAt"])

	status, updated, _ := api.do(http.MethodPut, "/api/livestock/"+animalID, token, map[string]any{"healthStatus": "Sick"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Sick", updated["healthStatus"])

	status, body, _ = api.do(http.MethodDelete, "/api/livestock/"+animalID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Livestock deleted successfully", body["message"])

	status, body, _ = api.do(http.MethodGet, "/api/livestock/"+animalID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Livestock not found", body["message"])

	status, _, list = api.do(http.MethodGet, "/api/feeding", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].(map[string]any)["animalId"])
}

func TestOwnerIsolationOverHTTP(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.signUp("alice@example.com")
	bob := api.signUp("bob@example.com")

	status, item, _ := api.do(http.MethodPost, "/api/inventory", alice, map[string]any{
		"itemName": "Dewormer", "category": "Medicine", "currentStock": 5, "minimumStock": 10, "unit": "Bottles",
	})
	require.Equal(t, http.StatusCreated, status)
	id := item["_id"].(string)

	status, _, _ = api.do(http.MethodGet, "/api/inventory/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _, _ = api.do(http.MethodPut, "/api/inventory/"+id, bob, map[string]any{"currentStock": 50})
	assert.Equal(t, http.StatusNotFound, status)
	status, _, _ = api.do(http.MethodDelete, "/api/inventory/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, _, list := api.do(http.MethodGet, "/api/inventory/low-stock", bob, nil)
	assert.Empty(t, list)

	status, _, list = api.do(http.MethodGet, "/api/inventory/low-stock", alice, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, "Dewormer", list[0].(map[string]any)["itemName"])
}

func TestSchedulerEndpoints(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signUp("sched@example.com")

	status, reminder, _ := api.do(http.MethodPost, "/api/scheduler", token, map[string]any{
		"title": "Vaccinate", "reminderType": "Vaccination",
		"dueDate": time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, status, reminder)
	id := reminder["_id"].(string)

	status, body, _ := api.do(http.MethodGet, "/api/scheduler/dashboard/summary", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, body["overdueReminders"])
	assert.Equal(t, 1.0, body["pendingReminders"])

	status, body, _ = api.do(http.MethodPut, "/api/scheduler/"+id+"/complete", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Completed", body["status"])
	assert.NotEmpty(t, body["completedDate"])

	_, body, _ = api.do(http.MethodGet, "/api/scheduler/dashboard/summary", token, nil)
	assert.Equal(t, 0.0, body["overdueReminders"])
	assert.Equal(t, 1.0, body["totalReminders"])

	status, _, list := api.do(http.MethodGet, "/api/scheduler/upcoming/list", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list)

	status, _, list = api.do(http.MethodGet, "/api/scheduler?status=Completed", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list, 1)

	status, body, _ = api.do(http.MethodGet, "/api/scheduler?startDate=someday", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []any{map[string]any{"field": "startDate", "message": "must be a date"}}, body["errors"])
}

func TestTerminalStatusesCannotBeReopened(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signUp("lifecycle@example.com")

	status, reminder, _ := api.do(http.MethodPost, "/api/scheduler", token, map[string]any{
		"title": "Order feed", "reminderType": "Feeding", "dueDate": "2024-06-01",
	})
	require.Equal(t, http.StatusCreated, status, reminder)
	reminderPath := "/api/scheduler/" + reminder["_id"].(string)

	status, _, _ = api.do(http.MethodPut, reminderPath+"/complete", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body, _ := api.do(http.MethodPut, reminderPath, token, map[string]any{"status": "Pending"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])

	_, body, _ = api.do(http.MethodGet, reminderPath, token, nil)
	assert.Equal(t, "Completed", body["status"])

	status, task, _ := api.do(http.MethodPost, "/api/staff/tasks", token, map[string]any{
		"title": "Repair fence", "taskType": "Other", "dueDate": "2024-06-02",
	})
	require.Equal(t, http.StatusCreated, status, task)
	taskPath := "/api/staff/tasks/" + task["_id"].(string)

	status, body, _ = api.do(http.MethodPut, taskPath, token, map[string]any{"status": "In Progress"})
	require.Equal(t, http.StatusOK, status, body)

	status, body, _ = api.do(http.MethodPut, taskPath, token, map[string]any{"status": "Completed"})
	require.Equal(t, http.StatusOK, status, body)
	assert.NotEmpty(t, body["completedDate"])

	status, _, _ = api.do(http.MethodPut, taskPath, token, map[string]any{"status": "In Progress"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestFinanceSummaryEndpoint(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signUp("money@example.com")

	status, _, _ := api.do(http.MethodPost, "/api/finance/income", token, map[string]any{
		"incomeDate": "2024-03-01", "category": "Milk", "description": "March milk", "amount": 300,
	})
	require.Equal(t, http.StatusCreated, status)
	status, _, _ = api.do(http.MethodPost, "/api/finance/expenses", token, map[string]any{
		"expenseDate": "2024-03-02", "category": "Feed", "description": "Hay", "amount": 120,
	})
	require.Equal(t, http.StatusCreated, status)

	status, body, _ := api.do(http.MethodGet, "/api/finance/summary?startDate=2024-03-01&endDate=2024-03-31", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 300.0, body["totalIncome"])
	assert.Equal(t, 120.0, body["totalExpenses"])
	assert.Equal(t, 180.0, body["netProfit"])
	assert.Equal(t, []any{map[string]any{"_id": "Milk", "total": 300.0}}, body["incomeByCategory"])

	status, body, _ = api.do(http.MethodGet, "/api/finance/income/summary?startDate=2030-01-01", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0.0, body["totalIncome"])
	assert.Equal(t, 0.0, body["netProfit"])
	assert.Equal(t, []any{}, body["incomeByCategory"])
}

func TestEnvironmentEndpoints(t *testing.T) {
	api := newTestAPI(t, stubWeather{})
	token := api.signUp("wx@example.com")

	status, _, _ := api.do(http.MethodPost, "/api/environment", token, map[string]any{
		"location": map[string]any{"city": "Leeds"}, "date": "2024-06-01",
		"temperature": 18, "humidity": 60, "weatherCondition": "Cloudy",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body, _ := api.do(http.MethodPost, "/api/environment", token, map[string]any{
		"location": map[string]any{}, "date": "2024-06-01",
		"temperature": 18, "humidity": 160, "weatherCondition": "Cloudy",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, body["errors"], 2)

	status, _, list := api.do(http.MethodGet, "/api/environment?city=lee", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list, 1)

	status, _, list = api.do(http.MethodGet, "/api/environment/cities/list", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"Leeds"}, list)

	status, body, _ = api.do(http.MethodGet, "/api/environment/forecast/Leeds", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Leeds", body["city"])
	assert.Len(t, body["forecast"], weather.ForecastDays)

	status, _, _ = api.do(http.MethodGet, "/api/environment/forecast/Atlantis", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	disabled := newTestAPI(t, nil)
	other := disabled.signUp("nowx@example.com")
	status, _, _ = disabled.do(http.MethodGet, "/api/environment/forecast/Leeds", other, nil)
	assert.Equal(t, http.StatusNotImplemented, status)
}

func TestExportDisabled(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signUp("export@example.com")

	status, _, _ := api.do(http.MethodPost, "/api/export", token, map[string]any{
		"resource": "livestock", "spreadsheetId": "abc",
	})
	assert.Equal(t, http.StatusServiceUnavailable, status)

	status, body, _ := api.do(http.MethodPost, "/api/export", token, map[string]any{"resource": "livestock"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []any{map[string]any{"field": "spreadsheetId", "message": "is required"}}, body["errors"])
}

func TestExportDownload(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.signUp("xlsx@example.com")

	status, _, _ := api.do(http.MethodPost, "/api/livestock", token, map[string]any{
		"name": "Bessie", "species": "Cattle", "breed": "Holstein",
		"dateOfBirth": "2020-01-01", "gender": "Female",
	})
	require.Equal(t, http.StatusCreated, status)

	req := httptest.NewRequest(http.MethodGet, "/api/export?resource=livestock", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	api.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="livestock.xlsx"`, w.Header().Get("Content-Disposition"))
	// XLSX files are zip archives.
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	status, body, _ := api.do(http.MethodGet, "/api/export?resource=users", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])
}

func TestRequestID(t *testing.T) {
	api := newTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	api.handler.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "upstream-1")
	w = httptest.NewRecorder()
	api.handler.ServeHTTP(w, req)
	assert.Equal(t, "upstream-1", w.Header().Get(RequestIDHeader))
}
