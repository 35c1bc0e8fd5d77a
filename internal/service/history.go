package service

import (
	"math"
	"sort"
	"time"

	"github.com/saedabdu/tickerproxy/internal/table"
	"github.com/saedabdu/tickerproxy/pkg/models"
)

var historyColumns = []string{"Open", "High", "Low", "Close", "Volume", "Dividends", "Stock Splits"}

var intradayIntervals = map[string]bool{
	"1m": true, "2m": true, "5m": true, "15m": true,
	"30m": true, "60m": true, "90m": true, "1h": true,
}

// historyTable builds the bar table of a chart. Daily and longer bars are
// indexed by Date at exchange midnight, intraday bars by Datetime.
// Corporate actions land on the bar containing their date.
// Bars with no prices and no corporate action are dropped.
func historyTable(chart *models.ChartResult) (*table.Table, error) {
	loc := exchangeLocation(chart.Meta)
	intraday := intradayIntervals[chart.Meta.DataGranularity]

	indexName := "Date"
	if intraday {
		indexName = "Datetime"
	}
	tbl := table.New([]string{indexName}, historyColumns...)

	quote := firstQuote(chart)

	starts := make([]int64, len(chart.Timestamp))
	for i, ts := range chart.Timestamp {
		starts[i] = barStart(ts, loc, intraday).Unix()
	}

	dividends := make(map[int]float64, len(chart.Events.Dividends))
	for _, d := range chart.Events.Dividends {
		if i := containingBar(starts, barStart(d.Date, loc, intraday).Unix()); i >= 0 {
			dividends[i] += d.Amount
		}
	}
	splits := make(map[int]float64, len(chart.Events.Splits))
	for _, s := range chart.Events.Splits {
		if s.Denominator == 0 {
			continue
		}
		if i := containingBar(starts, barStart(s.Date, loc, intraday).Unix()); i >= 0 {
			if prev, ok := splits[i]; ok {
				splits[i] = prev * s.Numerator / s.Denominator
			} else {
				splits[i] = s.Numerator / s.Denominator
			}
		}
	}

	for i := range chart.Timestamp {
		open, high, low, closePrice := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		dividend, hasDividend := dividends[i]
		split, hasSplit := splits[i]
		if open == nil && high == nil && low == nil && closePrice == nil && !hasDividend && !hasSplit {
			continue
		}

		if err := tbl.AppendRow([]any{time.Unix(starts[i], 0).In(loc)},
			open, high, low, closePrice, volumeAt(quote.Volume, i), dividend, split,
		); err != nil {
			return nil, err
		}
	}

	return tbl, nil
}

// barStart is the start of the bar ts falls in: the timestamp itself for
// intraday bars, exchange midnight otherwise
func barStart(ts int64, loc *time.Location, intraday bool) time.Time {
	t := time.Unix(ts, 0).In(loc)
	if intraday {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// containingBar returns the index of the last bar starting at or before ts,
// or -1 when ts precedes every bar. starts must be ascending.
func containingBar(starts []int64, ts int64) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > ts }) - 1
}

// exchangeLocation resolves the exchange timezone, falling back to its fixed offset
func exchangeLocation(meta models.ChartMeta) *time.Location {
	if meta.ExchangeTimezoneName != "" {
		if loc, err := time.LoadLocation(meta.ExchangeTimezoneName); err == nil {
			return loc
		}
	}
	if meta.Timezone != "" || meta.GMTOffset != 0 {
		return time.FixedZone(meta.Timezone, meta.GMTOffset)
	}
	return time.UTC
}

func firstQuote(chart *models.ChartResult) models.ChartQuote {
	if len(chart.Indicators.Quote) == 0 {
		return models.ChartQuote{}
	}
	return chart.Indicators.Quote[0]
}

// at returns values[i] or an untyped nil when it is absent
func at(values []*float64, i int) any {
	if i < 0 || i >= len(values) || values[i] == nil {
		return nil
	}
	return *values[i]
}

// volumeAt returns integral volumes as int64; anything outside the int64 range stays a float
func volumeAt(values []*float64, i int) any {
	f, ok := at(values, i).(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return f
	}
	return int64(f)
}
