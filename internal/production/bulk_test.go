package production

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/segminerals/ownerportal/pkg/models"
	"github.com/segminerals/ownerportal/pkg/utils"
)

// fakeSource serves canned rows keyed by normalized identifier and
// records every chunk it is asked for.
type fakeSource struct {
	mu     sync.Mutex
	rows   map[string][]models.ProductionRow
	chunks [][]string
	err    error
}

func (f *fakeSource) ProductionRows(ctx context.Context, wellIDs []string) ([]models.ProductionRow, error) {
	f.mu.Lock()
	f.chunks = append(f.chunks, wellIDs)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.ProductionRow
	for _, id := range wellIDs {
		out = append(out, f.rows[utils.NormalizeAPI(id)]...)
	}
	return out, nil
}

func prodRow(api string, year int, month time.Month, oil float64) models.ProductionRow {
	return models.ProductionRow{
		API:         api,
		Month:       time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
		LiquidsHist: &oil,
	}
}

func TestLookupGroupsByOriginalSpelling(t *testing.T) {
	src := &fakeSource{rows: map[string][]models.ProductionRow{
		// Warehouse returns the undashed form regardless of input.
		"4204100001": {prodRow("4204100001", 2025, time.January, 100)},
	}}
	svc := NewService(src)

	res, err := svc.Lookup(context.Background(), []string{"42-041-00001"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("count = %d, want 1", res.Count)
	}
	rows, ok := res.ByAPI["42-041-00001"]
	if !ok {
		t.Fatalf("by_api keys = %v, want the dashed spelling the caller sent", res.ByAPI)
	}
	if len(rows) != 1 {
		t.Errorf("grouped rows = %d, want 1", len(rows))
	}
	if res.Missing != nil {
		t.Errorf("missing = %v, want nil", res.Missing)
	}
}

func TestLookupReportsMissing(t *testing.T) {
	svc := NewService(&fakeSource{rows: map[string][]models.ProductionRow{}})

	res, err := svc.Lookup(context.Background(), []string{"42-041-00001"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Count != 0 || len(res.Rows) != 0 {
		t.Errorf("count = %d rows = %d, want empty", res.Count, len(res.Rows))
	}
	if got := res.Missing["42-041-00001"]; got != "No production data found" {
		t.Errorf("missing reason = %q", got)
	}
}

func TestLookupPartialMiss(t *testing.T) {
	src := &fakeSource{rows: map[string][]models.ProductionRow{
		"W1": {prodRow("W1", 2025, time.January, 10)},
	}}
	svc := NewService(src)

	res, err := svc.Lookup(context.Background(), []string{"W1", "W2"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(res.ByAPI["W1"]) != 1 {
		t.Errorf("W1 rows = %d, want 1", len(res.ByAPI["W1"]))
	}
	if _, ok := res.Missing["W2"]; !ok {
		t.Errorf("missing = %v, want W2 reported", res.Missing)
	}
	if _, ok := res.Missing["W1"]; ok {
		t.Error("W1 matched but was reported missing")
	}
}

func TestLookupDedupesPreservingOrder(t *testing.T) {
	src := &fakeSource{rows: map[string][]models.ProductionRow{}}
	svc := NewService(src)

	res, err := svc.Lookup(context.Background(), []string{"42-041-00001", "4204100001", "W2"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(src.chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(src.chunks))
	}
	got := src.chunks[0]
	if len(got) != 2 || got[0] != "42-041-00001" || got[1] != "W2" {
		t.Errorf("queried ids = %v, want first spellings in input order", got)
	}
	// The collapsed duplicate is not separately reported missing.
	if len(res.Missing) != 2 {
		t.Errorf("missing = %v, want the two unique ids", res.Missing)
	}
}

func TestLookupRejectsOversizedBatch(t *testing.T) {
	svc := NewService(&fakeSource{})

	ids := make([]string, MaxWells+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("W%05d", i)
	}
	_, err := svc.Lookup(context.Background(), ids)
	if !errors.Is(err, ErrTooManyWells) {
		t.Fatalf("err = %v, want ErrTooManyWells", err)
	}
}

func TestLookupChunksLargeBatches(t *testing.T) {
	src := &fakeSource{rows: map[string][]models.ProductionRow{}}
	svc := NewService(src)

	ids := make([]string, 2500)
	for i := range ids {
		ids[i] = fmt.Sprintf("W%05d", i)
	}
	if _, err := svc.Lookup(context.Background(), ids); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(src.chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(src.chunks))
	}
	total := 0
	for _, part := range src.chunks {
		if len(part) > 1000 {
			t.Errorf("chunk size %d exceeds 1000", len(part))
		}
		total += len(part)
	}
	if total != 2500 {
		t.Errorf("total queried = %d, want 2500", total)
	}
}

func TestLookupEmptyInput(t *testing.T) {
	src := &fakeSource{}
	svc := NewService(src)

	res, err := svc.Lookup(context.Background(), []string{"", "  "})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Count != 0 || len(src.chunks) != 0 {
		t.Errorf("blank ids must not reach the warehouse: count=%d chunks=%d", res.Count, len(src.chunks))
	}
}

func TestLookupSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("warehouse down")}
	svc := NewService(src)

	_, err := svc.Lookup(context.Background(), []string{"W1"})
	if err == nil || !strings.Contains(err.Error(), "warehouse down") {
		t.Fatalf("err = %v, want wrapped source error", err)
	}
}

func TestLookupRowsSorted(t *testing.T) {
	src := &fakeSource{rows: map[string][]models.ProductionRow{
		"W1": {
			prodRow("W1", 2025, time.March, 3),
			prodRow("W1", 2025, time.January, 1),
		},
	}}
	svc := NewService(src)

	res, err := svc.Lookup(context.Background(), []string{"W1"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Rows[0].Month.After(res.Rows[1].Month) {
		t.Error("rows not sorted chronologically")
	}
	grouped := res.ByAPI["W1"]
	if grouped[0].Month.After(grouped[1].Month) {
		t.Error("grouped rows not sorted chronologically")
	}
}
