package models

// ChartResponse represents the response from the Yahoo Finance chart API
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *ProviderError `json:"error"`
	} `json:"chart"`
}

// ProviderError is the error envelope Yahoo embeds in API responses
type ProviderError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ChartResult holds the bars of one symbol
type ChartResult struct {
	Meta       ChartMeta       `json:"meta"`
	Timestamp  []int64         `json:"timestamp"`
	Events     ChartEvents     `json:"events"`
	Indicators ChartIndicators `json:"indicators"`
}

// ChartMeta describes the instrument and the requested range
type ChartMeta struct {
	Currency             string   `json:"currency"`
	Symbol               string   `json:"symbol"`
	ExchangeName         string   `json:"exchangeName"`
	FullExchangeName     string   `json:"fullExchangeName"`
	InstrumentType       string   `json:"instrumentType"`
	RegularMarketTime    int64    `json:"regularMarketTime"`
	GMTOffset            int      `json:"gmtoffset"`
	Timezone             string   `json:"timezone"`
	ExchangeTimezoneName string   `json:"exchangeTimezoneName"`
	RegularMarketPrice   *float64 `json:"regularMarketPrice"`
	RegularMarketDayHigh *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  *float64 `json:"regularMarketDayLow"`
	RegularMarketVolume  *float64 `json:"regularMarketVolume"`
	FiftyTwoWeekHigh     *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow      *float64 `json:"fiftyTwoWeekLow"`
	ChartPreviousClose   *float64 `json:"chartPreviousClose"`
	PreviousClose        *float64 `json:"previousClose"`
	DataGranularity      string   `json:"dataGranularity"`
	Range                string   `json:"range"`
}

// ChartEvents holds corporate actions keyed by their unix timestamp
type ChartEvents struct {
	Dividends map[string]Dividend `json:"dividends"`
	Splits    map[string]Split    `json:"splits"`
}

type Dividend struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

type Split struct {
	Date        int64   `json:"date"`
	Numerator   float64 `json:"numerator"`
	Denominator float64 `json:"denominator"`
	SplitRatio  string  `json:"splitRatio"`
}

type ChartIndicators struct {
	Quote    []ChartQuote    `json:"quote"`
	AdjClose []ChartAdjClose `json:"adjclose"`
}

// ChartQuote holds one value per timestamp; nil marks a missing value
type ChartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

type ChartAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

// QuoteSummary maps a quoteSummary module name to its fields.
// Formatted {raw, fmt} values are already collapsed to raw.
type QuoteSummary map[string]map[string]any

// TimeseriesPoint is one reported value of a fundamentals series
type TimeseriesPoint struct {
	AsOfDate     string
	PeriodType   string
	CurrencyCode string
	Value        *float64
}

// TimeseriesSeries is a fundamentals line item, such as annualTotalRevenue
type TimeseriesSeries struct {
	Type   string
	Points []TimeseriesPoint
}
