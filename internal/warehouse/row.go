package warehouse

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is one warehouse result row keyed by upper-cased column name.
// Getters tolerate the driver's type variance (Snowflake returns NUMBER
// columns as strings or float64 depending on scale) and treat NULL as
// absence rather than an error.
type Row map[string]any

// Str returns the string value of a column, "" when NULL or absent.
func (r Row) Str(key string) string {
	v, ok := r[strings.ToUpper(key)]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case sql.RawBytes:
		return string(s)
	default:
		return fmt.Sprintf("%v", s)
	}
}

// Float returns the numeric value of a column, or nil when NULL, absent,
// or non-numeric.
func (r Row) Float(key string) *float64 {
	v, ok := r[strings.ToUpper(key)]
	if !ok || v == nil {
		return nil
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		f = parsed
	case []byte:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

// Int64 returns the integer value of a column, or nil when unusable.
func (r Row) Int64(key string) *int64 {
	f := r.Float(key)
	if f == nil {
		return nil
	}
	n := int64(*f)
	return &n
}

// Time returns the time value of a column, or nil when NULL, absent, or
// unparsable. String columns are accepted in the warehouse's date and
// timestamp renderings.
func (r Row) Time(key string) *time.Time {
	v, ok := r[strings.ToUpper(key)]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		return parseWarehouseTime(t)
	case []byte:
		return parseWarehouseTime(string(t))
	default:
		return nil
	}
}

func parseWarehouseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
