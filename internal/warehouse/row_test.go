package warehouse

import (
	"testing"
	"time"
)

func TestRowStr(t *testing.T) {
	r := Row{"WELL_NAME": "SMITH 1H", "EMPTY": nil, "BYTES_COL": []byte("abc")}

	if got := r.Str("well_name"); got != "SMITH 1H" {
		t.Errorf("Str(lower key) = %q, want case-insensitive match", got)
	}
	if got := r.Str("EMPTY"); got != "" {
		t.Errorf("Str(NULL) = %q, want empty", got)
	}
	if got := r.Str("MISSING"); got != "" {
		t.Errorf("Str(absent) = %q, want empty", got)
	}
	if got := r.Str("bytes_col"); got != "abc" {
		t.Errorf("Str([]byte) = %q, want abc", got)
	}
}

func TestRowFloat(t *testing.T) {
	r := Row{
		"F":    3.5,
		"I":    int64(7),
		"S":    "42.25",
		"BAD":  "n/a",
		"NULL": nil,
	}

	if got := r.Float("f"); got == nil || *got != 3.5 {
		t.Errorf("Float(float64) = %v, want 3.5", got)
	}
	if got := r.Float("I"); got == nil || *got != 7 {
		t.Errorf("Float(int64) = %v, want 7", got)
	}
	if got := r.Float("S"); got == nil || *got != 42.25 {
		t.Errorf("Float(numeric string) = %v, want 42.25", got)
	}
	if got := r.Float("BAD"); got != nil {
		t.Errorf("Float(non-numeric) = %v, want nil", got)
	}
	if got := r.Float("NULL"); got != nil {
		t.Errorf("Float(NULL) = %v, want nil", got)
	}
}

func TestRowTime(t *testing.T) {
	when := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	r := Row{"T": when, "S": "2024-06-30", "BAD": "soon"}

	if got := r.Time("T"); got == nil || !got.Equal(when) {
		t.Errorf("Time(time.Time) = %v, want %v", got, when)
	}
	if got := r.Time("S"); got == nil || !got.Equal(when) {
		t.Errorf("Time(date string) = %v, want %v", got, when)
	}
	if got := r.Time("BAD"); got != nil {
		t.Errorf("Time(garbage) = %v, want nil", got)
	}
}

func TestInPlaceholders(t *testing.T) {
	if got := inPlaceholders(3); got != "?, ?, ?" {
		t.Errorf("inPlaceholders(3) = %q", got)
	}
	if got := inPlaceholders(1); got != "?" {
		t.Errorf("inPlaceholders(1) = %q", got)
	}
	if got := inPlaceholders(0); got != "" {
		t.Errorf("inPlaceholders(0) = %q", got)
	}
}

func TestValidateConfig(t *testing.T) {
	err := validate(warehouseTestConfig(""))
	if err == nil {
		t.Fatal("expected config error for missing account")
	}
	cfgErr, ok := err.(*ConfigError)
	if !ok {
		t.Fatalf("error type = %T, want *ConfigError", err)
	}
	if len(cfgErr.Missing) != 1 || cfgErr.Missing[0] != "account" {
		t.Errorf("Missing = %v, want [account]", cfgErr.Missing)
	}

	if err := validate(warehouseTestConfig("ACCT")); err != nil {
		t.Errorf("complete config should validate, got %v", err)
	}
}
