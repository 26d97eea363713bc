package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestProductionRowWireDates(t *testing.T) {
	vol := 100.0
	row := ProductionRow{
		API:         "4204100001",
		Month:       time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC),
		LiquidsHist: &vol,
	}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"month":"2025-01-31"`) {
		t.Errorf("month should serialize as YYYY-MM-DD, got %s", data)
	}
	if strings.Contains(string(data), "T00:00:00") {
		t.Errorf("month should not carry a time component, got %s", data)
	}

	var back ProductionRow
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Month.Equal(row.Month) {
		t.Errorf("roundtrip month = %v, want %v", back.Month, row.Month)
	}
	if back.LiquidsHist == nil || *back.LiquidsHist != 100 {
		t.Errorf("roundtrip liquids = %v, want 100", back.LiquidsHist)
	}
}

func TestProductionRowUnmarshalBadDate(t *testing.T) {
	var row ProductionRow
	err := json.Unmarshal([]byte(`{"api":"X","month":"January 2025"}`), &row)
	if err == nil {
		t.Error("non-wire date should fail to parse")
	}
}
