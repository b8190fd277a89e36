package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ledgerdash/ledgerdash/internal/title"
)

// CSVSource reads one row-oriented extract file per ledger side.
// Delimiter is sniffed from the header line and latin-1 files are
// transparently re-decoded, since older ERP exports are not UTF-8.
type CSVSource struct {
	path string
	side title.Side
}

// NewCSVSource builds a source over a CSV extract.
func NewCSVSource(path string, side title.Side) *CSVSource {
	return &CSVSource{path: path, side: side}
}

// Name identifies the source in logs and errors.
func (s *CSVSource) Name() string { return "csv:" + s.path }

// Load reads and decodes the whole extract.
func (s *CSVSource) Load(ctx context.Context) ([]title.FinancialTitle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("loader: read csv: %w", err)
	}
	if !utf8.Valid(raw) {
		decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), raw)
		if err == nil {
			raw = decoded
		}
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = sniffDelimiter(raw)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("loader: parse csv: %w", err)
	}
	return decodeTable(rows, s.side), nil
}

// sniffDelimiter picks the delimiter from the header line; Brazilian
// ERP exports favour semicolons.
func sniffDelimiter(raw []byte) rune {
	header := string(raw)
	if idx := strings.IndexByte(header, '\n'); idx >= 0 {
		header = header[:idx]
	}
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}
