// Package sheets writes record exports into Google Sheets.
package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/livestock/internal/config"
)

// Writer defines the spreadsheet operations used by the export service.
type Writer interface {
	Clear(ctx context.Context, spreadsheetID, sheetRange string) error
	AppendRows(ctx context.Context, spreadsheetID, sheetRange string, rows [][]interface{}) error
}

// GoogleSheetWriter implements Writer using the official Google Sheets API.
type GoogleSheetWriter struct {
	service *sheetsapi.Service
	logger  *zap.Logger
}

// NewGoogleSheetWriter builds a Google Sheets backed writer. The service
// account behind the credentials file must have edit access to the target
// spreadsheets.
func NewGoogleSheetWriter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetWriter, error) {
	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return newWriter(service, logger), nil
}

func newWriter(service *sheetsapi.Service, logger *zap.Logger) *GoogleSheetWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleSheetWriter{service: service, logger: logger}
}

// Clear removes the values in sheetRange, keeping formatting.
func (w *GoogleSheetWriter) Clear(ctx context.Context, spreadsheetID, sheetRange string) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	call := w.service.Spreadsheets.Values.Clear(spreadsheetID, sheetRange, &sheetsapi.ClearValuesRequest{}).Context(ctx)
	if _, err := call.Do(); err != nil {
		return fmt.Errorf("clear range %s: %w", sheetRange, err)
	}
	return nil
}

// AppendRows appends rows below the last filled row of sheetRange.
func (w *GoogleSheetWriter) AppendRows(ctx context.Context, spreadsheetID, sheetRange string, rows [][]interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}
	if len(rows) == 0 {
		return nil
	}

	payload := &sheetsapi.ValueRange{Values: rows}

	call := w.service.Spreadsheets.Values.Append(spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}

	w.logger.Debug("rows appended to sheet", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}
