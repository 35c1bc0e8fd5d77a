package table

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MaxSafeInteger is the largest integer a double-precision float holds exactly
	MaxSafeInteger = 1<<53 - 1

	// TimestampLayout is the rendering of every timestamp cell
	TimestampLayout = "2006-01-02 15:04:05"
)

var (
	maxSafeBig     = big.NewInt(MaxSafeInteger)
	maxSafeDecimal = decimal.NewFromInt(MaxSafeInteger)
)

// Record is one JSON-safe output row
type Record map[string]any

// Normalize converts a table into JSON-safe records, one per row, in row order.
// Index levels become regular fields. The result is never nil.
func Normalize(t *Table) []Record {
	if t.Empty() {
		return []Record{}
	}

	fields := indexFields(t)
	records := make([]Record, 0, t.Len())

	for i, row := range t.Rows {
		rec := make(Record, len(fields)+len(t.Columns))

		if t.Index.Levels() == 0 {
			rec[fields[0]] = int64(i)
		} else {
			for level, name := range fields {
				rec[name] = NormalizeValue(label(t, i, level))
			}
		}

		for j, col := range t.Columns {
			var v any
			if j < len(row) {
				v = row[j]
			}
			rec[col] = NormalizeValue(v)
		}

		records = append(records, rec)
	}

	return records
}

// indexFields names the fields index levels are materialized into.
// Unnamed levels become "index" (single level) or "level_N" (composite).
func indexFields(t *Table) []string {
	taken := make(map[string]struct{}, len(t.Columns))
	for _, col := range t.Columns {
		taken[col] = struct{}{}
	}

	names := t.Index.Names
	if len(names) == 0 {
		names = []string{""}
	}

	fields := make([]string, len(names))
	for i, name := range names {
		if name == "" {
			if len(names) == 1 {
				name = "index"
			} else {
				name = fmt.Sprintf("level_%d", i)
			}
		}
		if _, ok := taken[name]; ok {
			name += "_index"
		}
		taken[name] = struct{}{}
		fields[i] = name
	}
	return fields
}

func label(t *Table, row, level int) any {
	if row >= len(t.Index.Labels) || level >= len(t.Index.Labels[row]) {
		return nil
	}
	return t.Index.Labels[row][level]
}

// NormalizeValue applies the per-cell policy: missing and non-finite values
// become nil, timestamps become TimestampLayout strings and numbers outside
// the safe integer range become their decimal string.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool, string:
		return x
	case float64:
		return normalizeFloat(x)
	case float32:
		return normalizeFloat(float64(x))
	case int:
		return normalizeInt(int64(x))
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return normalizeInt(x)
	case uint:
		return normalizeUint(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return normalizeUint(x)
	case *big.Int:
		if x == nil {
			return nil
		}
		if x.CmpAbs(maxSafeBig) > 0 {
			return x.String()
		}
		return x.Int64()
	case decimal.Decimal:
		if x.Abs().GreaterThan(maxSafeDecimal) {
			return x.String()
		}
		f, _ := x.Float64()
		return f
	case json.Number:
		return normalizeNumber(x)
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x.Format(TimestampLayout)
	case map[string]any:
		return NormalizeMap(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = NormalizeValue(item)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return NormalizeValue(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

// NormalizeMap applies NormalizeValue to every value of a mapping
func NormalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = NormalizeValue(v)
	}
	return out
}

func normalizeFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if math.Abs(f) > MaxSafeInteger {
		// shortest round-trip digits, not the exact binary expansion
		return decimal.NewFromFloat(f).String()
	}
	return f
}

func normalizeInt(i int64) any {
	if i > MaxSafeInteger || i < -MaxSafeInteger {
		return strconv.FormatInt(i, 10)
	}
	return i
}

func normalizeUint(u uint64) any {
	if u > MaxSafeInteger {
		return strconv.FormatUint(u, 10)
	}
	return int64(u)
}

func normalizeNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return normalizeInt(i)
	}
	if b, ok := new(big.Int).SetString(n.String(), 10); ok {
		return NormalizeValue(b)
	}
	if f, err := n.Float64(); err == nil {
		return normalizeFloat(f)
	}
	return n.String()
}
