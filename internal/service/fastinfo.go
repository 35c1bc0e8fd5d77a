package service

import (
	"github.com/saedabdu/tickerproxy/pkg/models"
)

// trading days in roughly three months
const threeMonthBars = 63

// fastInfo derives quick price statistics from a year of daily bars.
// It returns nil when the chart has neither bars nor a market price.
func fastInfo(chart *models.ChartResult) map[string]any {
	meta := chart.Meta
	if len(chart.Timestamp) == 0 && meta.RegularMarketPrice == nil {
		return nil
	}

	quote := firstQuote(chart)
	closes := present(quote.Close)
	volumes := present(quote.Volume)
	last := len(chart.Timestamp) - 1

	info := map[string]any{
		"currency":                meta.Currency,
		"exchange":                meta.ExchangeName,
		"quoteType":               meta.InstrumentType,
		"timezone":                meta.ExchangeTimezoneName,
		"lastPrice":               meta.RegularMarketPrice,
		"previousClose":           meta.ChartPreviousClose,
		"open":                    at(quote.Open, last),
		"dayHigh":                 at(quote.High, last),
		"dayLow":                  at(quote.Low, last),
		"lastVolume":              volumeAt(quote.Volume, last),
		"yearHigh":                extreme(present(quote.High), func(a, b float64) bool { return a > b }),
		"yearLow":                 extreme(present(quote.Low), func(a, b float64) bool { return a < b }),
		"yearChange":              nil,
		"fiftyDayAverage":         mean(tail(closes, 50)),
		"twoHundredDayAverage":    mean(tail(closes, 200)),
		"tenDayAverageVolume":     mean(tail(volumes, 10)),
		"threeMonthAverageVolume": mean(tail(volumes, threeMonthBars)),
	}

	if meta.RegularMarketPrice == nil && len(closes) > 0 {
		info["lastPrice"] = closes[len(closes)-1]
	}
	if len(closes) >= 2 {
		info["previousClose"] = closes[len(closes)-2]
		if closes[0] != 0 {
			info["yearChange"] = closes[len(closes)-1]/closes[0] - 1
		}
	}

	for _, key := range []string{"currency", "exchange", "quoteType", "timezone"} {
		if info[key] == "" {
			info[key] = nil
		}
	}

	return info
}

// present returns the non-missing values in order
func present(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func tail(values []float64, n int) []float64 {
	if len(values) > n {
		return values[len(values)-n:]
	}
	return values
}

func mean(values []float64) any {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func extreme(values []float64, better func(a, b float64) bool) any {
	if len(values) == 0 {
		return nil
	}
	best := values[0]
	for _, v := range values[1:] {
		if better(v, best) {
			best = v
		}
	}
	return best
}
