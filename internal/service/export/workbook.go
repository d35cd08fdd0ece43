package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/service/records"
)

// XLSXContentType is the media type of workbooks written by Workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

// Workbook writes the owner's records of resource to w as an XLSX file with
// a single sheet named after the family. It returns the number of data rows.
func (s *Service) Workbook(ctx context.Context, owner records.Owner, resource string, w io.Writer) (int, error) {
	sc, rows, err := s.table(ctx, owner, resource)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	sheet := sc.Label
	if len(sheet) > maxSheetName {
		sheet = sheet[:maxSheetName]
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return 0, fmt.Errorf("name sheet %s: %w", sheet, err)
	}

	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return len(rows) - 1, nil
}
