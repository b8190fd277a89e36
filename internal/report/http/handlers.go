// Package reporthttp exposes the dashboard aggregates as a JSON API.
// Chart and table rendering is a front-end concern; these endpoints
// are its data contract.
package reporthttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerdash/ledgerdash/internal/platform/httpx"
	"github.com/ledgerdash/ledgerdash/internal/report"
	"github.com/ledgerdash/ledgerdash/internal/title"
)

const requestTimeout = 5 * time.Second

var validate = validator.New()

// ReportService defines the aggregate contract used by the handler.
type ReportService interface {
	KPIs(ctx context.Context, q report.Query) (report.KPISummary, error)
	Aging(ctx context.Context, q report.Query) ([]report.AgingRow, error)
	ABCRanking(ctx context.Context, q report.Query, dim report.ABCDimension) ([]report.ABCEntry, error)
	Concentration(ctx context.Context, q report.Query) (report.ConcentrationStats, error)
	IntercompanyNetting(ctx context.Context, f title.Filter) (report.NettingResult, error)
	Partitions(ctx context.Context, f title.Filter) (report.PartitionSummary, error)
}

// Handler coordinates HTTP requests for the finance dashboard API.
type Handler struct {
	logger  *slog.Logger
	service ReportService
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches the dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/kpis", h.handleKPIs)
	r.Get("/aging", h.handleAging)
	r.Get("/abc", h.handleABC)
	r.Get("/netting", h.handleNetting)
	r.Get("/concentration", h.handleConcentration)
	r.Get("/partitions", h.handlePartitions)
}

type filterParams struct {
	Side   string `validate:"omitempty,oneof=payable receivable"`
	Status string `validate:"omitempty,oneof=PAID NO_DUE_DATE OVERDUE DUE_7 DUE_15 DUE_30 DUE_60 DUE_60_PLUS"`
	Dim    string `validate:"omitempty,oneof=counterparty category"`
}

type parsedRequest struct {
	query report.Query
	dim   report.ABCDimension
}

func parseRequest(r *http.Request) (parsedRequest, error) {
	values := r.URL.Query()
	params := filterParams{
		Side:   values.Get("side"),
		Status: values.Get("status"),
		Dim:    values.Get("dim"),
	}
	if err := validate.Struct(params); err != nil {
		return parsedRequest{}, fmt.Errorf("invalid query parameters: %w", err)
	}

	var parsed parsedRequest
	parsed.query.Side = title.SidePayable
	if params.Side == "receivable" {
		parsed.query.Side = title.SideReceivable
	}
	parsed.dim = report.ABCDimension(params.Dim)

	f := &parsed.query.Filter
	if raw := values.Get("from"); raw != "" {
		from, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return parsedRequest{}, fmt.Errorf("invalid from date %q", raw)
		}
		f.IssuedFrom = &from
	}
	if raw := values.Get("to"); raw != "" {
		to, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return parsedRequest{}, fmt.Errorf("invalid to date %q", raw)
		}
		f.IssuedTo = &to
	}
	if raw := values.Get("branches"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			branch, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return parsedRequest{}, fmt.Errorf("invalid branch %q", part)
			}
			f.Branches = append(f.Branches, branch)
		}
	}
	f.Status = title.DueStatus(params.Status)
	f.OnlyPaid = values.Get("paid") == "true"
	f.OnlyOverdue = values.Get("overdue") == "true"
	f.Category = values.Get("category")
	f.Counterparty = values.Get("q")
	if raw := values.Get("invoice"); raw != "" {
		hasInvoice := raw == "true"
		f.HasInvoice = &hasInvoice
	}
	f.Method = values.Get("method")
	return parsed, nil
}

// DashboardResponse bundles every panel of the dashboard view.
type DashboardResponse struct {
	KPIs          report.KPISummary         `json:"kpis"`
	Aging         []report.AgingRow         `json:"aging"`
	ABC           []report.ABCEntry         `json:"abc"`
	Netting       report.NettingResult      `json:"netting"`
	Partitions    report.PartitionSummary   `json:"partitions"`
	Concentration report.ConcentrationStats `json:"concentration"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	parsed, err := parseRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filters", err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var resp DashboardResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		resp.KPIs, err = h.service.KPIs(gctx, parsed.query)
		return err
	})
	g.Go(func() (err error) {
		resp.Aging, err = h.service.Aging(gctx, parsed.query)
		return err
	})
	g.Go(func() (err error) {
		resp.ABC, err = h.service.ABCRanking(gctx, parsed.query, parsed.dim)
		return err
	})
	g.Go(func() (err error) {
		resp.Netting, err = h.service.IntercompanyNetting(gctx, parsed.query.Filter)
		return err
	})
	g.Go(func() (err error) {
		resp.Partitions, err = h.service.Partitions(gctx, parsed.query.Filter)
		return err
	})
	g.Go(func() (err error) {
		resp.Concentration, err = h.service.Concentration(gctx, parsed.query)
		return err
	})
	if err := g.Wait(); err != nil {
		h.fail(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleKPIs(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(ctx context.Context, parsed parsedRequest) (interface{}, error) {
		return h.service.KPIs(ctx, parsed.query)
	})
}

func (h *Handler) handleAging(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(ctx context.Context, parsed parsedRequest) (interface{}, error) {
		return h.service.Aging(ctx, parsed.query)
	})
}

func (h *Handler) handleABC(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(ctx context.Context, parsed parsedRequest) (interface{}, error) {
		return h.service.ABCRanking(ctx, parsed.query, parsed.dim)
	})
}

func (h *Handler) handleNetting(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(ctx context.Context, parsed parsedRequest) (interface{}, error) {
		return h.service.IntercompanyNetting(ctx, parsed.query.Filter)
	})
}

func (h *Handler) handleConcentration(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(ctx context.Context, parsed parsedRequest) (interface{}, error) {
		return h.service.Concentration(ctx, parsed.query)
	})
}

func (h *Handler) handlePartitions(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(ctx context.Context, parsed parsedRequest) (interface{}, error) {
		return h.service.Partitions(ctx, parsed.query.Filter)
	})
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, load func(context.Context, parsedRequest) (interface{}, error)) {
	parsed, err := parseRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filters", err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := load(ctx, parsed)
	if err != nil {
		h.fail(w, "load aggregate", err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
