package service

import (
	"context"
	"errors"
	"time"

	"github.com/saedabdu/tickerproxy/internal/client"
	"github.com/saedabdu/tickerproxy/internal/logger"
	"github.com/saedabdu/tickerproxy/internal/table"
	"github.com/saedabdu/tickerproxy/pkg/models"
)

// Dataset names, used in log lines and error messages
const (
	DatasetInfo                = "info"
	DatasetHistory             = "history"
	DatasetAnalystPriceTargets = "analyst price targets"
	DatasetFastInfo            = "fast info"
	DatasetIncomeStatement     = "income statement"
)

const (
	DefaultPeriod   = "1mo"
	DefaultInterval = "1d"
)

// infoModules are merged, in order, into the info mapping
var infoModules = []string{
	"assetProfile",
	"summaryDetail",
	"defaultKeyStatistics",
	"financialData",
	"quoteType",
	"price",
}

// Provider is the market data source behind the service
type Provider interface {
	Chart(ctx context.Context, symbol, period, interval string) (*models.ChartResult, error)
	QuoteSummary(ctx context.Context, symbol string, modules ...string) (models.QuoteSummary, error)
	Timeseries(ctx context.Context, symbol string, types []string, start, end time.Time) ([]models.TimeseriesSeries, error)
}

// TickerService fetches per-symbol datasets and reshapes them into JSON-safe values
type TickerService struct {
	provider Provider
	now      func() time.Time
}

// New creates a new TickerService
func New(provider Provider) *TickerService {
	return &TickerService{
		provider: provider,
		now:      time.Now,
	}
}

// Info returns the merged quoteSummary modules of symbol.
// A symbol without a regular market price is reported as not found.
func (s *TickerService) Info(ctx context.Context, symbol string) (map[string]any, error) {
	const missing = "Ticker symbol '%s' not found or no data available."

	summary, err := s.provider.QuoteSummary(ctx, symbol, infoModules...)
	if errors.Is(err, client.ErrNoData) {
		return nil, notFound(symbol, DatasetInfo, missing)
	}
	if err != nil {
		return nil, err
	}

	info := make(map[string]any)
	for _, module := range infoModules {
		for key, value := range summary[module] {
			if value == nil || key == "maxAge" {
				continue
			}
			if _, seen := info[key]; !seen {
				info[key] = value
			}
		}
	}

	if info["regularMarketPrice"] == nil {
		return nil, notFound(symbol, DatasetInfo, missing)
	}

	logger.FromContext(ctx).Debug("info fetched", "symbol", symbol, "fields", len(info))
	return table.NormalizeMap(info), nil
}

// History returns one record per price bar. Empty period or interval fall back to
// DefaultPeriod and DefaultInterval.
func (s *TickerService) History(ctx context.Context, symbol, period, interval string) ([]table.Record, error) {
	const missing = "No historical data found for ticker '%s' with the given parameters."

	if period == "" {
		period = DefaultPeriod
	}
	if interval == "" {
		interval = DefaultInterval
	}

	chart, err := s.provider.Chart(ctx, symbol, period, interval)
	if errors.Is(err, client.ErrNoData) {
		return nil, notFound(symbol, DatasetHistory, missing)
	}
	if err != nil {
		return nil, err
	}

	tbl, err := historyTable(chart)
	if err != nil {
		return nil, err
	}
	if tbl.Empty() {
		return nil, notFound(symbol, DatasetHistory, missing)
	}

	logger.FromContext(ctx).Debug("history fetched",
		"symbol", symbol, "period", period, "interval", interval, "bars", tbl.Len())
	return table.Normalize(tbl), nil
}

// AnalystPriceTargets returns the current price and the analyst target range
func (s *TickerService) AnalystPriceTargets(ctx context.Context, symbol string) (map[string]any, error) {
	const missing = "No analyst price target data found for ticker '%s'."

	summary, err := s.provider.QuoteSummary(ctx, symbol, "financialData")
	if errors.Is(err, client.ErrNoData) {
		return nil, notFound(symbol, DatasetAnalystPriceTargets, missing)
	}
	if err != nil {
		return nil, err
	}

	data := summary["financialData"]
	if data["currentPrice"] == nil {
		return nil, notFound(symbol, DatasetAnalystPriceTargets, missing)
	}

	return table.NormalizeMap(map[string]any{
		"current": data["currentPrice"],
		"high":    data["targetHighPrice"],
		"low":     data["targetLowPrice"],
		"mean":    data["targetMeanPrice"],
		"median":  data["targetMedianPrice"],
	}), nil
}

// FastInfo returns price statistics derived from one year of daily bars
func (s *TickerService) FastInfo(ctx context.Context, symbol string) (map[string]any, error) {
	const missing = "No fast_info data found for ticker '%s'."

	chart, err := s.provider.Chart(ctx, symbol, "1y", "1d")
	if errors.Is(err, client.ErrNoData) {
		return nil, notFound(symbol, DatasetFastInfo, missing)
	}
	if err != nil {
		return nil, err
	}

	info := fastInfo(chart)
	if len(info) == 0 {
		return nil, notFound(symbol, DatasetFastInfo, missing)
	}

	return table.NormalizeMap(info), nil
}

// IncomeStatement returns one record per income statement line item, with one
// field per fiscal year end. A symbol without statements yields an empty list.
func (s *TickerService) IncomeStatement(ctx context.Context, symbol string) ([]table.Record, error) {
	types := make([]string, len(incomeStatementItems))
	for i, item := range incomeStatementItems {
		types[i] = annualPrefix + item
	}

	series, err := s.provider.Timeseries(ctx, symbol, types, incomeStatementStart, s.now())
	if errors.Is(err, client.ErrNoData) {
		return []table.Record{}, nil
	}
	if err != nil {
		return nil, err
	}

	tbl, err := incomeTable(series)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Debug("income statement fetched", "symbol", symbol, "items", tbl.Len())
	return table.Normalize(tbl), nil
}
