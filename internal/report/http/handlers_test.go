package reporthttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdash/ledgerdash/internal/report"
	"github.com/ledgerdash/ledgerdash/internal/title"
)

type stubService struct {
	lastQuery  report.Query
	lastFilter title.Filter
	lastDim    report.ABCDimension
	err        error
}

func (s *stubService) KPIs(ctx context.Context, q report.Query) (report.KPISummary, error) {
	s.lastQuery = q
	return report.KPISummary{Total: 1234, RowCount: 5}, s.err
}

func (s *stubService) Aging(ctx context.Context, q report.Query) ([]report.AgingRow, error) {
	s.lastQuery = q
	return []report.AgingRow{{Status: title.StatusOverdue, Amount: 100, Count: 1}}, s.err
}

func (s *stubService) ABCRanking(ctx context.Context, q report.Query, dim report.ABCDimension) ([]report.ABCEntry, error) {
	s.lastQuery = q
	s.lastDim = dim
	return []report.ABCEntry{{Name: "Alfa", Class: report.ClassA}}, s.err
}

func (s *stubService) Concentration(ctx context.Context, q report.Query) (report.ConcentrationStats, error) {
	s.lastQuery = q
	return report.ConcentrationStats{HHI: 2500, Counterparties: 4}, s.err
}

func (s *stubService) IntercompanyNetting(ctx context.Context, f title.Filter) (report.NettingResult, error) {
	s.lastFilter = f
	return report.NettingResult{}, s.err
}

func (s *stubService) Partitions(ctx context.Context, f title.Filter) (report.PartitionSummary, error) {
	s.lastFilter = f
	return report.PartitionSummary{}, s.err
}

func testRouter(svc *stubService) chi.Router {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Route("/api", h.MountRoutes)
	return r
}

func TestKPIEndpoint(t *testing.T) {
	svc := &stubService{}
	r := testRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kpis", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary report.KPISummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.InDelta(t, 1234, summary.Total, 0.001)
	require.Equal(t, title.SidePayable, svc.lastQuery.Side)
}

func TestFilterParsing(t *testing.T) {
	svc := &stubService{}
	r := testRouter(svc)

	rec := httptest.NewRecorder()
	url := "/api/kpis?side=receivable&from=2026-01-01&to=2026-03-31&branches=101,202&status=OVERDUE&category=FRETE&q=alfa&invoice=true&method=PIX"
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	q := svc.lastQuery
	require.Equal(t, title.SideReceivable, q.Side)
	require.NotNil(t, q.Filter.IssuedFrom)
	require.Equal(t, "2026-01-01", q.Filter.IssuedFrom.Format("2006-01-02"))
	require.Equal(t, []int{101, 202}, q.Filter.Branches)
	require.Equal(t, title.StatusOverdue, q.Filter.Status)
	require.Equal(t, "FRETE", q.Filter.Category)
	require.Equal(t, "alfa", q.Filter.Counterparty)
	require.NotNil(t, q.Filter.HasInvoice)
	require.True(t, *q.Filter.HasInvoice)
	require.Equal(t, "PIX", q.Filter.Method)
}

func TestInvalidParamsRejected(t *testing.T) {
	r := testRouter(&stubService{})

	for _, url := range []string{
		"/api/kpis?side=payables",
		"/api/kpis?status=LATE",
		"/api/kpis?from=31-01-2026",
		"/api/kpis?branches=abc",
		"/api/abc?dim=branch",
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		require.Equal(t, http.StatusBadRequest, rec.Code, url)
	}
}

func TestABCDimensionForwarded(t *testing.T) {
	svc := &stubService{}
	r := testRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/abc?dim=category", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, report.ByCategory, svc.lastDim)
}

func TestDashboardComposite(t *testing.T) {
	r := testRouter(&stubService{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.InDelta(t, 1234, resp.KPIs.Total, 0.001)
	require.Len(t, resp.Aging, 1)
	require.Len(t, resp.ABC, 1)
	require.Equal(t, 4, resp.Concentration.Counterparties)
}

func TestServiceErrorBecomesProblem(t *testing.T) {
	r := testRouter(&stubService{err: errors.New("snapshot source down")})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/aging", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Internal Error")
}
