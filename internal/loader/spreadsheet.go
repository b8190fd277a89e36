package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/ledgerdash/ledgerdash/internal/title"
)

// SpreadsheetSource reads an XLSX extract, falling back to the legacy
// BIFF .xls reader for files exported by older ERP builds.
type SpreadsheetSource struct {
	path string
	side title.Side
}

// NewSpreadsheetSource builds a source over a spreadsheet extract.
func NewSpreadsheetSource(path string, side title.Side) *SpreadsheetSource {
	return &SpreadsheetSource{path: path, side: side}
}

// Name identifies the source in logs and errors.
func (s *SpreadsheetSource) Name() string { return "spreadsheet:" + s.path }

// Load reads the first sheet of the workbook.
func (s *SpreadsheetSource) Load(ctx context.Context) ([]title.FinancialTitle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("loader: read workbook: %w", err)
	}

	rows, err := workbookRows(data, filepath.Ext(s.path))
	if err != nil {
		return nil, err
	}
	return decodeTable(rows, s.side), nil
}

func workbookRows(data []byte, ext string) ([][]string, error) {
	if strings.EqualFold(ext, ".xls") {
		if rows, err := legacyRows(data); err == nil {
			return rows, nil
		}
		// Some extracts carry a .xls name over xlsx content.
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		if rows, legacyErr := legacyRows(data); legacyErr == nil {
			return rows, nil
		}
		return nil, fmt.Errorf("loader: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("loader: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("loader: read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func legacyRows(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, fmt.Errorf("loader: xls workbook has no sheets")
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
