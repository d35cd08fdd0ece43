package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

func TestAppendRowsAndClear(t *testing.T) {
	var calls []string
	var appended sheetsapi.ValueRange

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.URL.Query().Get("valueInputOption") != "" {
			assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))
			assert.Equal(t, "INSERT_ROWS", r.URL.Query().Get("insertDataOption"))
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &appended))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	service, err := sheetsapi.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(srv.URL),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	writer := newWriter(service, nil)
	ctx := context.Background()

	require.NoError(t, writer.Clear(ctx, "sheet-1", "Livestock"))
	require.NoError(t, writer.AppendRows(ctx, "sheet-1", "Livestock", [][]interface{}{{"name"}, {"Bessie"}}))
	require.NoError(t, writer.AppendRows(ctx, "sheet-1", "Livestock", nil))

	assert.Equal(t, []string{
		"POST /v4/spreadsheets/sheet-1/values/Livestock:clear",
		"POST /v4/spreadsheets/sheet-1/values/Livestock:append",
	}, calls)
	assert.Equal(t, [][]interface{}{{"name"}, {"Bessie"}}, appended.Values)

	assert.Error(t, writer.Clear(ctx, "sheet-1", ""))
}
