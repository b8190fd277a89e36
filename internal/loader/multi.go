package loader

import (
	"context"
	"strings"

	"github.com/ledgerdash/ledgerdash/internal/title"
)

// MultiSource concatenates several sources into one load, so payable
// and receivable extract files can feed a single snapshot.
type MultiSource struct {
	sources []Source
}

// NewMultiSource combines sources; nil entries are ignored.
func NewMultiSource(sources ...Source) *MultiSource {
	kept := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &MultiSource{sources: kept}
}

// Name joins the member names.
func (m *MultiSource) Name() string {
	names := make([]string, 0, len(m.sources))
	for _, s := range m.sources {
		names = append(names, s.Name())
	}
	return strings.Join(names, "+")
}

// Load loads every member in order. Any member failure fails the whole
// load; a snapshot must never silently miss one side of the ledger.
func (m *MultiSource) Load(ctx context.Context) ([]title.FinancialTitle, error) {
	var all []title.FinancialTitle
	for _, s := range m.sources {
		titles, err := s.Load(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, titles...)
	}
	return all, nil
}
