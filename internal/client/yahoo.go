package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/saedabdu/tickerproxy/internal/cache"
	"github.com/saedabdu/tickerproxy/internal/config"
	"github.com/saedabdu/tickerproxy/pkg/models"
)

const (
	chartPath        = "/v8/finance/chart/{symbol}"
	quoteSummaryPath = "/v10/finance/quoteSummary/{symbol}"
	timeseriesPath   = "/ws/fundamentals-timeseries/v1/finance/timeseries/{symbol}"
	crumbPath        = "/v1/test/getcrumb"

	crumbKey = "crumb"
	// Yahoo reports unknown symbols with this error code
	notFoundCode = "Not Found"
)

// ErrNoData is returned when Yahoo Finance has nothing for the requested symbol
var ErrNoData = errors.New("no data returned from Yahoo Finance")

// Observer receives one call per upstream request
type Observer interface {
	ObserveUpstream(endpoint string, code int, elapsed time.Duration)
}

// Yahoo is the Yahoo Finance API client
type Yahoo struct {
	http      *resty.Client
	cookieURL string
	session   *cache.Cache[string]
	observer  Observer
	crumbMu   sync.Mutex
}

type Option func(*Yahoo)

// WithObserver reports every upstream call to o
func WithObserver(o Observer) Option {
	return func(y *Yahoo) {
		y.observer = o
	}
}

// NewYahoo creates a new Yahoo Finance API client
func NewYahoo(cfg config.ProviderConfig, opts ...Option) *Yahoo {
	// cookiejar.New only fails on a non-nil options value
	jar, _ := cookiejar.New(nil)

	y := &Yahoo{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("User-Agent", cfg.UserAgent).
			SetHeader("Accept", "application/json").
			SetCookieJar(jar),
		cookieURL: cfg.CookieURL,
		session:   cache.New[string](1, cfg.CrumbTTL),
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Chart retrieves price bars and corporate actions for symbol over period
func (c *Yahoo) Chart(ctx context.Context, symbol, period, interval string) (*models.ChartResult, error) {
	resp, err := c.get(ctx, "chart", chartPath, symbol, map[string]string{
		"range":          period,
		"interval":       interval,
		"includePrePost": "false",
		"events":         "div,splits",
	})
	if err != nil {
		return nil, err
	}

	var result models.ChartResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		if statusErr := checkStatus("chart", resp); statusErr != nil {
			return nil, statusErr
		}
		return nil, fmt.Errorf("error decoding Yahoo Finance chart response: %w", err)
	}

	if e := result.Chart.Error; e != nil {
		if e.Code == notFoundCode {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("Yahoo Finance chart error (%s): %s", e.Code, e.Description)
	}
	if err := checkStatus("chart", resp); err != nil {
		return nil, err
	}
	if len(result.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	return &result.Chart.Result[0], nil
}

// QuoteSummary retrieves the given quoteSummary modules for symbol
func (c *Yahoo) QuoteSummary(ctx context.Context, symbol string, modules ...string) (models.QuoteSummary, error) {
	crumb, err := c.crumb(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, "quoteSummary", quoteSummaryPath, symbol, map[string]string{
		"modules":    strings.Join(modules, ","),
		"formatted":  "false",
		"corsDomain": "finance.yahoo.com",
		"crumb":      crumb,
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		c.session.Delete(crumbKey)
		return nil, fmt.Errorf("Yahoo Finance rejected the session crumb (status code %d)", resp.StatusCode())
	}

	root, err := envelope("quoteSummary", resp)
	if err != nil {
		return nil, err
	}

	result := root.Get("result.0")
	if !result.IsObject() {
		return nil, ErrNoData
	}

	summary := make(models.QuoteSummary)
	result.ForEach(func(module, fields gjson.Result) bool {
		if !fields.IsObject() {
			return true
		}
		values := make(map[string]any)
		fields.ForEach(func(key, value gjson.Result) bool {
			values[key.String()] = plainValue(value)
			return true
		})
		summary[module.String()] = values
		return true
	})

	return summary, nil
}

// Timeseries retrieves fundamentals series such as annualTotalRevenue reported between start and end
func (c *Yahoo) Timeseries(ctx context.Context, symbol string, types []string, start, end time.Time) ([]models.TimeseriesSeries, error) {
	resp, err := c.get(ctx, "timeseries", timeseriesPath, symbol, map[string]string{
		"symbol":  symbol,
		"type":    strings.Join(types, ","),
		"period1": strconv.FormatInt(start.Unix(), 10),
		"period2": strconv.FormatInt(end.Unix(), 10),
		"merge":   "false",
	})
	if err != nil {
		return nil, err
	}

	root, err := envelope("timeseries", resp)
	if err != nil {
		return nil, err
	}

	var series []models.TimeseriesSeries
	for _, r := range root.Get("result").Array() {
		typ := r.Get("meta.type.0").String()
		if typ == "" {
			continue
		}

		s := models.TimeseriesSeries{Type: typ}
		for _, p := range r.Get(gjson.Escape(typ)).Array() {
			if p.Type == gjson.Null {
				continue
			}
			point := models.TimeseriesPoint{
				AsOfDate:     p.Get("asOfDate").String(),
				PeriodType:   p.Get("periodType").String(),
				CurrencyCode: p.Get("currencyCode").String(),
			}
			if raw := p.Get("reportedValue.raw"); raw.Type == gjson.Number {
				v := raw.Float()
				point.Value = &v
			}
			s.Points = append(s.Points, point)
		}
		if len(s.Points) > 0 {
			series = append(series, s)
		}
	}

	return series, nil
}

// crumb returns the session crumb, fetching cookies and a new crumb when it has expired
func (c *Yahoo) crumb(ctx context.Context) (string, error) {
	if crumb, ok := c.session.Get(crumbKey); ok {
		return crumb, nil
	}

	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()

	if crumb, ok := c.session.Get(crumbKey); ok {
		return crumb, nil
	}

	// The cookie host answers 404 but still sets the session cookie
	if _, err := c.http.R().SetContext(ctx).Get(c.cookieURL); err != nil {
		return "", fmt.Errorf("error fetching Yahoo Finance session cookie: %w", err)
	}

	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).SetHeader("Accept", "text/plain").Get(crumbPath)
	c.observe("crumb", resp, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("error fetching Yahoo Finance crumb: %w", err)
	}

	crumb := strings.TrimSpace(resp.String())
	if resp.StatusCode() != http.StatusOK || crumb == "" || strings.ContainsAny(crumb, "<{") {
		return "", fmt.Errorf("Yahoo Finance crumb request failed (status code %d)", resp.StatusCode())
	}

	c.session.Set(crumbKey, crumb)
	return crumb, nil
}

func (c *Yahoo) get(ctx context.Context, endpoint, path, symbol string, query map[string]string) (*resty.Response, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(query).
		Get(path)
	c.observe(endpoint, resp, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("error making request to Yahoo Finance %s: %w", endpoint, err)
	}
	return resp, nil
}

func (c *Yahoo) observe(endpoint string, resp *resty.Response, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	code := 0
	if resp != nil {
		code = resp.StatusCode()
	}
	c.observer.ObserveUpstream(endpoint, code, elapsed)
}

// envelope unwraps the {"<name>": {"result": ..., "error": ...}} shape shared by
// the quoteSummary and timeseries endpoints
func envelope(name string, resp *resty.Response) (gjson.Result, error) {
	body := resp.Body()
	if !gjson.ValidBytes(body) {
		if err := checkStatus(name, resp); err != nil {
			return gjson.Result{}, err
		}
		return gjson.Result{}, fmt.Errorf("error decoding Yahoo Finance %s response: invalid JSON", name)
	}

	root := gjson.GetBytes(body, name)
	if e := root.Get("error"); e.IsObject() {
		code := e.Get("code").String()
		if code == notFoundCode {
			return gjson.Result{}, ErrNoData
		}
		return gjson.Result{}, fmt.Errorf("Yahoo Finance %s error (%s): %s", name, code, e.Get("description").String())
	}
	if err := checkStatus(name, resp); err != nil {
		return gjson.Result{}, err
	}

	return root, nil
}

func checkStatus(endpoint string, resp *resty.Response) error {
	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrNoData
	default:
		return fmt.Errorf("Yahoo Finance %s error (status code %d): %s", endpoint, resp.StatusCode(), resp.String())
	}
}

// plainValue converts a JSON node to Go values, collapsing {raw, fmt} pairs
// to raw and keeping numbers as json.Number so large integers stay exact
func plainValue(r gjson.Result) any {
	switch {
	case r.IsObject():
		if raw := r.Get("raw"); raw.Exists() {
			return plainValue(raw)
		}
		m := make(map[string]any)
		r.ForEach(func(key, value gjson.Result) bool {
			m[key.String()] = plainValue(value)
			return true
		})
		if len(m) == 0 {
			return nil
		}
		return m
	case r.IsArray():
		items := r.Array()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = plainValue(item)
		}
		return out
	}

	switch r.Type {
	case gjson.True, gjson.False:
		return r.Bool()
	case gjson.Number:
		return json.Number(r.Raw)
	case gjson.String:
		return r.Str
	default:
		return nil
	}
}
