package serializer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Method names registered by NewSimple.
const (
	MethodDatetime = "to_datetime"
	MethodDecimal  = "to_decimal"
)

var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// NewSimple returns a serializer for timestamps and decimals.
//
// time.Time values serialize to RFC 3339 with nanoseconds and come back
// through "to_datetime", which also accepts date-only strings, unix
// seconds, and a "layout" kwarg. decimal.Decimal values serialize to
// their string form and come back through "to_decimal".
func NewSimple() *Base {
	return NewBase().
		RegisterEncoder("time", encodeTime).
		RegisterEncoder("decimal", encodeDecimal).
		RegisterDecoder(MethodDatetime, toDatetime).
		RegisterDecoder(MethodDecimal, toDecimal)
}

func encodeTime(v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, fmt.Errorf("encode time: unexpected %T", v)
	}
	return t.Format(time.RFC3339Nano), nil
}

func encodeDecimal(v any) (any, error) {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return nil, fmt.Errorf("encode decimal: unexpected %T", v)
	}
	return d.String(), nil
}

func toDatetime(v any, kwargs map[string]any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		return parseDatetime(x, kwargs)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("to_datetime: %w", err)
		}
		return unixTime(f), nil
	case float64:
		return unixTime(x), nil
	case int:
		return time.Unix(int64(x), 0).UTC(), nil
	case int64:
		return time.Unix(x, 0).UTC(), nil
	case nil:
		return nil, fmt.Errorf("to_datetime: nil value")
	default:
		return nil, fmt.Errorf("to_datetime: unsupported %T", v)
	}
}

func parseDatetime(s string, kwargs map[string]any) (time.Time, error) {
	s = strings.TrimSpace(s)
	if layout, ok := kwargs["layout"].(string); ok && layout != "" {
		t, err := time.Parse(layout, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("to_datetime: %w", err)
		}
		return t, nil
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return unixTime(f), nil
	}
	return time.Time{}, fmt.Errorf("to_datetime: unrecognized timestamp %q", s)
}

func unixTime(f float64) time.Time {
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

func toDecimal(v any, _ map[string]any) (any, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case string:
		return parseDecimal(x)
	case json.Number:
		return parseDecimal(x.String())
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case nil:
		return nil, fmt.Errorf("to_decimal: nil value")
	default:
		return nil, fmt.Errorf("to_decimal: unsupported %T", v)
	}
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("to_decimal: %w", err)
	}
	return d, nil
}
