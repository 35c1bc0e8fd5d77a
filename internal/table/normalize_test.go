package table

import (
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("Should return an empty non-nil slice for an empty table", func(t *testing.T) {
		records := Normalize(New([]string{"Date"}, "Open", "Close"))

		require.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("Should return an empty slice for a nil table", func(t *testing.T) {
		var tbl *Table

		records := Normalize(tbl)

		require.NotNil(t, records)
		assert.Len(t, records, 0)
	})

	t.Run("Should materialize the index and stringify oversized integers", func(t *testing.T) {
		tbl := New([]string{"Date"}, "Open", "Volume")
		require.NoError(t, tbl.AppendRow(
			[]any{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
			186.0, uint64(10234560000000000000),
		))

		records := Normalize(tbl)

		require.Len(t, records, 1)
		assert.Equal(t, Record{
			"Date":   "2024-01-02 00:00:00",
			"Open":   186.0,
			"Volume": "10234560000000000000",
		}, records[0])
	})

	t.Run("Should render a missing cell as null", func(t *testing.T) {
		tbl := New([]string{"Date"}, "Open", "Close")
		require.NoError(t, tbl.AppendRow([]any{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}, 185.5, nil))

		records := Normalize(tbl)

		require.Len(t, records, 1)
		value, ok := records[0]["Close"]
		assert.True(t, ok)
		assert.Nil(t, value)

		body, err := json.Marshal(records)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"Close":null`)
	})

	t.Run("Should treat infinities and NaN as missing", func(t *testing.T) {
		tbl := New(nil, "a", "b", "c", "d")
		require.NoError(t, tbl.AppendRow(nil, math.Inf(1), math.Inf(-1), math.NaN(), float32(math.Inf(1))))

		records := Normalize(tbl)

		require.Len(t, records, 1)
		for _, col := range tbl.Columns {
			assert.Nil(t, records[0][col], "column %s", col)
		}
		_, err := json.Marshal(records)
		assert.NoError(t, err)
	})

	t.Run("Should preserve row order", func(t *testing.T) {
		tbl := New([]string{"Symbol"}, "Price")
		for _, sym := range []string{"MSFT", "AAPL", "IBM", "GOOG"} {
			require.NoError(t, tbl.AppendRow([]any{sym}, 1.0))
		}

		records := Normalize(tbl)

		require.Len(t, records, 4)
		assert.Equal(t, "MSFT", records[0]["Symbol"])
		assert.Equal(t, "AAPL", records[1]["Symbol"])
		assert.Equal(t, "IBM", records[2]["Symbol"])
		assert.Equal(t, "GOOG", records[3]["Symbol"])
	})

	t.Run("Should emit exactly the columns plus index fields", func(t *testing.T) {
		tbl := New([]string{"Date"}, "Open", "High", "Low")
		require.NoError(t, tbl.AppendRow([]any{time.Now()}, 1.0, 2.0, 0.5))

		records := Normalize(tbl)

		require.Len(t, records, 1)
		keys := make([]string, 0, len(records[0]))
		for k := range records[0] {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, []string{"Date", "Open", "High", "Low"}, keys)
	})

	t.Run("Should flatten a composite index into one field per level", func(t *testing.T) {
		tbl := New([]string{"Symbol", ""}, "Close")
		require.NoError(t, tbl.AppendRow([]any{"AAPL", time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)}, 179.66))

		records := Normalize(tbl)

		require.Len(t, records, 1)
		assert.Equal(t, Record{
			"Symbol":  "AAPL",
			"level_1": "2024-03-01 15:30:00",
			"Close":   179.66,
		}, records[0])
	})

	t.Run("Should name an unnamed single index level index", func(t *testing.T) {
		tbl := New([]string{""}, "2023-09-30 00:00:00")
		require.NoError(t, tbl.AppendRow([]any{"TotalRevenue"}, 383285000000.0))

		records := Normalize(tbl)

		require.Len(t, records, 1)
		assert.Equal(t, "TotalRevenue", records[0]["index"])
		assert.Equal(t, 383285000000.0, records[0]["2023-09-30 00:00:00"])
	})

	t.Run("Should use the row ordinal when the table has no index levels", func(t *testing.T) {
		tbl := New(nil, "v")
		require.NoError(t, tbl.AppendRow(nil, "a"))
		require.NoError(t, tbl.AppendRow(nil, "b"))

		records := Normalize(tbl)

		assert.Equal(t, int64(0), records[0]["index"])
		assert.Equal(t, int64(1), records[1]["index"])
	})

	t.Run("Should not let an index level overwrite a column of the same name", func(t *testing.T) {
		tbl := New([]string{"Close"}, "Close")
		require.NoError(t, tbl.AppendRow([]any{"label"}, 10.0))

		records := Normalize(tbl)

		assert.Equal(t, 10.0, records[0]["Close"])
		assert.Equal(t, "label", records[0]["Close_index"])
	})

	t.Run("Should fill short rows with nulls", func(t *testing.T) {
		tbl := &Table{
			Columns: []string{"a", "b"},
			Index:   Index{Names: []string{"k"}},
			Rows:    [][]any{{1}},
		}

		records := Normalize(tbl)

		require.Len(t, records, 1)
		assert.Equal(t, int64(1), records[0]["a"])
		assert.Nil(t, records[0]["b"])
		assert.Nil(t, records[0]["k"])
	})

	t.Run("Should format every timestamp cell or render it as null", func(t *testing.T) {
		ny := time.FixedZone("EST", -5*60*60)
		ts := time.Date(2024, 1, 2, 9, 30, 0, 0, ny)
		tbl := New([]string{"Datetime"}, "Listed", "Delisted", "Ptr")
		require.NoError(t, tbl.AppendRow([]any{ts}, ts, time.Time{}, (*time.Time)(nil)))

		records := Normalize(tbl)
		pattern := regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

		require.Len(t, records, 1)
		assert.Equal(t, "2024-01-02 09:30:00", records[0]["Datetime"])
		assert.Regexp(t, pattern, records[0]["Listed"])
		assert.Nil(t, records[0]["Delisted"])
		assert.Nil(t, records[0]["Ptr"])
	})
}

func TestNormalizeValue(t *testing.T) {
	t.Run("Should keep values at the safe integer bound numeric", func(t *testing.T) {
		assert.Equal(t, int64(9007199254740991), NormalizeValue(int64(9007199254740991)))
		assert.Equal(t, int64(-9007199254740991), NormalizeValue(int64(-9007199254740991)))
		assert.Equal(t, int64(9007199254740991), NormalizeValue(uint64(9007199254740991)))
		assert.Equal(t, 9007199254740991.0, NormalizeValue(9007199254740991.0))
	})

	t.Run("Should render large floats with their shortest round-trip digits", func(t *testing.T) {
		assert.Equal(t, "100000000000000000000000", NormalizeValue(1e23))
	})

	t.Run("Should stringify values beyond the safe integer bound", func(t *testing.T) {
		testCases := []struct {
			name     string
			input    any
			expected string
		}{
			{"int64 above", int64(9007199254740992), "9007199254740992"},
			{"int64 below", int64(-9007199254740992), "-9007199254740992"},
			{"int above", int(1 << 60), "1152921504606846976"},
			{"uint64", uint64(math.MaxUint64), "18446744073709551615"},
			{"float64", 1.023456e19, "10234560000000000000"},
			{"negative float64", -2e16, "-20000000000000000"},
			{"big.Int", new(big.Int).Lsh(big.NewInt(1), 70), "1180591620717411303424"},
			{"json.Number", json.Number("123456789012345678901"), "123456789012345678901"},
			{"decimal", decimal.RequireFromString("90071992547409920"), "90071992547409920"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				assert.Equal(t, tc.expected, NormalizeValue(tc.input))
			})
		}
	})

	t.Run("Should widen small integers to int64", func(t *testing.T) {
		assert.Equal(t, int64(7), NormalizeValue(int8(7)))
		assert.Equal(t, int64(7), NormalizeValue(uint16(7)))
		assert.Equal(t, int64(7), NormalizeValue(7))
		assert.Equal(t, int64(42), NormalizeValue(json.Number("42")))
	})

	t.Run("Should keep in-range decimals numeric", func(t *testing.T) {
		assert.Equal(t, 1.5, NormalizeValue(json.Number("1.5")))
		assert.Equal(t, 0.25, NormalizeValue(decimal.RequireFromString("0.25")))
	})

	t.Run("Should dereference pointers", func(t *testing.T) {
		price := 12.5
		var missing *float64

		assert.Equal(t, 12.5, NormalizeValue(&price))
		assert.Nil(t, NormalizeValue(missing))
	})

	t.Run("Should normalize nested mappings and lists", func(t *testing.T) {
		input := map[string]any{
			"officers": []any{
				map[string]any{"name": "Tim", "totalPay": json.Number("16425933")},
			},
			"ratio": math.NaN(),
		}

		out := NormalizeValue(input).(map[string]any)

		assert.Nil(t, out["ratio"])
		officers := out["officers"].([]any)
		require.Len(t, officers, 1)
		assert.Equal(t, int64(16425933), officers[0].(map[string]any)["totalPay"])
	})

	t.Run("Should render unknown types with their default format", func(t *testing.T) {
		type ratio struct{ n, d int }

		assert.Equal(t, "{1 2}", NormalizeValue(ratio{1, 2}))
	})
}

func TestTable_AppendRow(t *testing.T) {
	t.Run("Should reject rows with the wrong number of values", func(t *testing.T) {
		tbl := New([]string{"Date"}, "Open", "Close")

		err := tbl.AppendRow([]any{time.Now()}, 1.0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 columns")
		assert.True(t, tbl.Empty())
	})

	t.Run("Should reject rows with the wrong number of labels", func(t *testing.T) {
		tbl := New([]string{"Symbol", "Date"}, "Close")

		err := tbl.AppendRow([]any{"AAPL"}, 1.0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 levels")
	})
}
