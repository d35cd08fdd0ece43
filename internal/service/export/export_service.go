// Package export copies an owner's records of one family into a Google Sheet
// or an XLSX workbook.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/domain/models"
	"github.com/mamadbah2/livestock/internal/domain/schema"
	"github.com/mamadbah2/livestock/internal/repository"
	"github.com/mamadbah2/livestock/internal/repository/sheets"
	"github.com/mamadbah2/livestock/internal/service/records"
)

// ErrSheetsDisabled is returned when no Sheets credentials are configured.
var ErrSheetsDisabled = errors.New("google sheets export is not configured")

// Request selects what to export and where.
type Request struct {
	Resource      string `json:"resource" binding:"required"`
	SpreadsheetID string `json:"spreadsheetId" binding:"required"`
	Sheet         string `json:"sheet"`
}

// Result reports how many data rows were written.
type Result struct {
	Rows int `json:"rows"`
}

// Service writes exports through a sheets.Writer.
type Service struct {
	engine *records.Engine
	writer sheets.Writer
	logger *zap.Logger
}

// NewService wires the export service. A nil writer disables exports.
func NewService(engine *records.Engine, writer sheets.Writer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, writer: writer, logger: logger}
}

// Export replaces the contents of the target sheet with a header row and one
// row per record, in the family's default order.
func (s *Service) Export(ctx context.Context, owner records.Owner, req Request) (Result, error) {
	if s.writer == nil {
		return Result{}, ErrSheetsDisabled
	}
	if strings.TrimSpace(req.SpreadsheetID) == "" {
		return Result{}, schema.Invalid("spreadsheetId", "is required")
	}

	sc, rows, err := s.table(ctx, owner, req.Resource)
	if err != nil {
		return Result{}, err
	}

	sheet := strings.TrimSpace(req.Sheet)
	if sheet == "" {
		sheet = sc.Label
	}

	if err := s.writer.Clear(ctx, req.SpreadsheetID, sheet); err != nil {
		return Result{}, fmt.Errorf("export %s: %w", sc.Collection, err)
	}
	if err := s.writer.AppendRows(ctx, req.SpreadsheetID, sheet, rows); err != nil {
		return Result{}, fmt.Errorf("export %s: %w", sc.Collection, err)
	}

	s.logger.Info("records exported",
		zap.String("owner", owner.String()),
		zap.String("collection", sc.Collection),
		zap.Int("rows", len(rows)-1),
	)
	return Result{Rows: len(rows) - 1}, nil
}

// table loads the owner's records of resource as a header row followed by
// one row per record.
func (s *Service) table(ctx context.Context, owner records.Owner, resource string) (*schema.Schema, [][]interface{}, error) {
	sc, ok := models.Lookup(strings.Trim(resource, "/"))
	if !ok {
		return nil, nil, schema.Invalid("resource", "is not an exportable resource")
	}

	repo, err := s.engine.For(owner, sc)
	if err != nil {
		return nil, nil, err
	}
	docs, err := repo.Find(ctx)
	if err != nil {
		return nil, nil, err
	}

	columns := append([]string{schema.FieldID}, sc.Columns()...)
	columns = append(columns, schema.FieldCreatedAt, schema.FieldUpdatedAt)

	rows := make([][]interface{}, 0, len(docs)+1)
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	rows = append(rows, header)
	for _, doc := range docs {
		rows = append(rows, Row(doc, columns))
	}
	return sc, rows, nil
}

// Row renders the values at columns (dotted paths) as sheet cells.
func Row(doc repository.Document, columns []string) []interface{} {
	row := make([]interface{}, len(columns))
	for i, path := range columns {
		row[i] = cell(lookup(doc, path))
	}
	return row
}

func lookup(doc repository.Document, path string) any {
	var current any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

func cell(v any) interface{} {
	switch value := v.(type) {
	case nil:
		return ""
	case time.Time:
		return value.UTC().Format(time.RFC3339)
	case primitive.ObjectID:
		return value.Hex()
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	}
	return v
}
