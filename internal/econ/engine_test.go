package econ

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/segminerals/ownerportal/internal/ownership"
	"github.com/segminerals/ownerportal/internal/pricing"
	"github.com/segminerals/ownerportal/pkg/models"
)

const tol = 1e-9

type fakeProduction struct {
	rows []models.ProductionRow
	err  error
}

func (f *fakeProduction) ProductionRows(ctx context.Context, wellIDs []string) ([]models.ProductionRow, error) {
	return f.rows, f.err
}

func fp(v float64) *float64 { return &v }

func monthEnd(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// flatCurve builds a blended curve priced flat across the given months.
func flatCurve(oil, gas float64, months ...time.Time) *pricing.Curve {
	rows := make([]models.PricePoint, 0, len(months))
	for _, m := range months {
		rows = append(rows, models.PricePoint{
			Deck: models.DeckHistorical, Month: m, Oil: fp(oil), Gas: fp(gas),
		})
	}
	return pricing.Blend("", rows)
}

// scenarioEngine wires the reference case: one well at 0.5 NRI producing
// 100 BBL oil per month for three months against flat $50 oil / $0 gas,
// with default assumptions and the clock pinned inside the last month.
func scenarioEngine(assume Assumptions) (*Engine, []ownership.WellInterest, *pricing.Curve) {
	jan := monthEnd(2025, time.January)
	feb := monthEnd(2025, time.February)
	mar := monthEnd(2025, time.March)

	src := &fakeProduction{rows: []models.ProductionRow{
		{API: "4204100001", Month: jan, LiquidsHist: fp(100)},
		{API: "4204100001", Month: feb, LiquidsHist: fp(100)},
		{API: "4204100001", Month: mar, LiquidsHist: fp(100)},
	}}

	eng := NewEngine(src, assume)
	eng.now = func() time.Time { return time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC) }

	wells := []ownership.WellInterest{
		{Well: models.Well{API: "42-041-00001"}, NRI: 0.5},
	}
	return eng, wells, flatCurve(50, 0, jan, feb, mar)
}

func TestComputeReferenceScenario(t *testing.T) {
	eng, wells, curve := scenarioEngine(DefaultAssumptions())

	res, err := eng.Compute(context.Background(), wells, curve)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// Per month: 100 BBL x $50 x 0.5 NRI = $2500 revenue; severance
	// 2500 x 4.6% = 115; ad valorem 2% = 50; NCF = 2335.
	if got := len(res.Cum.Dates); got != 3 {
		t.Fatalf("cum months = %d, want 3", got)
	}
	if res.Cum.Dates[0] != "2025-01-31" || res.Cum.Dates[2] != "2025-03-31" {
		t.Errorf("cum dates = %v", res.Cum.Dates)
	}
	if math.Abs(res.Cum.CumRevenue[0]-2500) > tol {
		t.Errorf("month 1 revenue = %v, want 2500", res.Cum.CumRevenue[0])
	}
	if math.Abs(res.Cum.CumRevenue[2]-7500) > tol {
		t.Errorf("cum revenue = %v, want 7500", res.Cum.CumRevenue[2])
	}
	if math.Abs(res.Cum.CumNCF[0]-2335) > tol {
		t.Errorf("month 1 NCF = %v, want 2335", res.Cum.CumNCF[0])
	}
	if math.Abs(res.Cum.CumNCF[2]-7005) > tol {
		t.Errorf("cum NCF = %v, want 7005", res.Cum.CumNCF[2])
	}

	if len(res.NPV) != len(SummaryRates) {
		t.Fatalf("npv entries = %d, want %d", len(res.NPV), len(SummaryRates))
	}
	if math.Abs(res.NPV[0].NPV-7005) > tol {
		t.Errorf("NPV at 0 = %v, want undiscounted 7005", res.NPV[0].NPV)
	}
	// Positive cash flow from the first month: payback is immediate.
	for _, entry := range res.NPV {
		if entry.Payback == nil || *entry.Payback != "2025-01-31" {
			t.Errorf("rate %v payback = %v, want 2025-01-31", entry.Rate, entry.Payback)
		}
	}
	// Discounting shrinks the total.
	if res.NPV[2].NPV >= res.NPV[0].NPV {
		t.Errorf("NPV at 10%% (%v) should be below NPV at 0 (%v)", res.NPV[2].NPV, res.NPV[0].NPV)
	}
	want := 2335 * (1 + 1/math.Pow(1.10, 1.0/12) + 1/math.Pow(1.10, 2.0/12))
	if math.Abs(res.NPV[2].NPV-want) > tol {
		t.Errorf("NPV at 10%% = %v, want %v", res.NPV[2].NPV, want)
	}

	if res.Window.Today != "2025-03-31" {
		t.Errorf("today = %q, want 2025-03-31", res.Window.Today)
	}
	if len(res.Window.Dates) != 3 {
		t.Errorf("window months = %d, want 3", len(res.Window.Dates))
	}

	// Six calendar years plus LTM and NTM.
	if len(res.Summary) != 8 {
		t.Fatalf("summary rows = %d, want 8", len(res.Summary))
	}
	if res.Summary[0].Label != "2025" || math.Abs(res.Summary[0].Value-7005) > tol {
		t.Errorf("year row = %+v, want 2025 / 7005", res.Summary[0])
	}
	if res.Summary[6].Label != "LTM" || math.Abs(res.Summary[6].Value-7005) > tol {
		t.Errorf("LTM row = %+v, want 7005", res.Summary[6])
	}
	if res.Summary[7].Label != "NTM" || res.Summary[7].Value != 0 {
		t.Errorf("NTM row = %+v, want 0", res.Summary[7])
	}

	// Pre-tax mode reports net volumes: 50 BBL x 3 months.
	if res.Stats.LTMOil == nil || math.Abs(*res.Stats.LTMOil-150) > tol {
		t.Errorf("LTM oil = %v, want 150", res.Stats.LTMOil)
	}
	if res.Stats.PV0 == nil || math.Abs(*res.Stats.PV0-7005) > tol {
		t.Errorf("PV0 = %v, want 7005", res.Stats.PV0)
	}
}

func TestComputeAfterTaxMode(t *testing.T) {
	assume := DefaultAssumptions()
	assume.NRIAfterTax = true
	eng, wells, curve := scenarioEngine(assume)

	res, err := eng.Compute(context.Background(), wells, curve)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// Every dollar figure is linear in volume, so scaling dollars after
	// taxes lands on the same cash flow as scaling volumes before.
	if math.Abs(res.Cum.CumNCF[2]-7005) > tol {
		t.Errorf("cum NCF = %v, want 7005", res.Cum.CumNCF[2])
	}
	// But the volume columns stay at working interest.
	if res.Stats.LTMOil == nil || math.Abs(*res.Stats.LTMOil-300) > tol {
		t.Errorf("LTM oil = %v, want gross 300", res.Stats.LTMOil)
	}
}

func TestComputeIdempotent(t *testing.T) {
	eng, wells, curve := scenarioEngine(DefaultAssumptions())

	first, err := eng.Compute(context.Background(), wells, curve)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	second, err := eng.Compute(context.Background(), wells, curve)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce identical output")
	}
}

func TestComputeMissingPriceMonth(t *testing.T) {
	jan := monthEnd(2025, time.January)
	feb := monthEnd(2025, time.February)

	src := &fakeProduction{rows: []models.ProductionRow{
		{API: "W1", Month: jan, LiquidsHist: fp(100)},
		{API: "W1", Month: feb, LiquidsHist: fp(100)},
	}}
	eng := NewEngine(src, DefaultAssumptions())
	eng.now = func() time.Time { return feb }

	// Curve starts in February; January has no price row (the blender
	// drops leading gaps), so it prices at zero but stays in the series.
	curve := flatCurve(50, 0, feb)
	wells := []ownership.WellInterest{{Well: models.Well{API: "W1"}, NRI: 1}}

	res, err := eng.Compute(context.Background(), wells, curve)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.Cum.Dates) != 2 {
		t.Fatalf("cum months = %d, want 2 (unpriced month kept)", len(res.Cum.Dates))
	}
	if res.Cum.CumRevenue[0] != 0 {
		t.Errorf("unpriced month revenue = %v, want 0", res.Cum.CumRevenue[0])
	}
	if math.Abs(res.Cum.CumRevenue[1]-5000) > tol {
		t.Errorf("cum revenue = %v, want 5000", res.Cum.CumRevenue[1])
	}
}

func TestComputeGasAndNGLStreams(t *testing.T) {
	jan := monthEnd(2025, time.January)

	src := &fakeProduction{rows: []models.ProductionRow{
		{API: "W1", Month: jan, GasHist: fp(1000)},
	}}
	eng := NewEngine(src, DefaultAssumptions())
	eng.now = func() time.Time { return jan }

	curve := flatCurve(0, 3, jan)
	wells := []ownership.WellInterest{{Well: models.Well{API: "W1"}, NRI: 1}}

	res, err := eng.Compute(context.Background(), wells, curve)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// 1000 MCF at $3 = 3000 gas revenue. NGL: 1000 x 0.9 / 1000 x 10 =
	// 9 BBL at the $3 gas index = 27. Gross 3027.
	if math.Abs(res.Cum.CumRevenue[0]-3027) > tol {
		t.Errorf("gross revenue = %v, want 3027", res.Cum.CumRevenue[0])
	}
	// Severance: 3000 x 7.5% + 27 x 4.6% = 226.242; ad valorem 60.54.
	wantNCF := 3027 - 3000*0.075 - 27*0.046 - 3027*0.02
	if math.Abs(res.Cum.CumNCF[0]-wantNCF) > tol {
		t.Errorf("NCF = %v, want %v", res.Cum.CumNCF[0], wantNCF)
	}
}

func TestComputeNeverPaysBack(t *testing.T) {
	assume := DefaultAssumptions()
	assume.OilGPTRate = 1000 // swamp revenue, every month negative
	eng, wells, curve := scenarioEngine(assume)

	res, err := eng.Compute(context.Background(), wells, curve)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, entry := range res.NPV {
		if entry.Payback != nil {
			t.Errorf("rate %v payback = %q, want null", entry.Rate, *entry.Payback)
		}
	}
	if res.NPV[0].NPV >= 0 {
		t.Errorf("NPV at 0 = %v, want negative", res.NPV[0].NPV)
	}
}

func TestWindowIncludesLTMBoundaryMonth(t *testing.T) {
	// The month exactly twelve back from today appears in the chart
	// window but not in the trailing-twelve total.
	boundary := monthEnd(2024, time.March)
	april := monthEnd(2024, time.April)
	mar25 := monthEnd(2025, time.March)

	src := &fakeProduction{rows: []models.ProductionRow{
		{API: "4204100001", Month: boundary, LiquidsHist: fp(100)},
		{API: "4204100001", Month: april, LiquidsHist: fp(100)},
		{API: "4204100001", Month: mar25, LiquidsHist: fp(100)},
	}}
	eng := NewEngine(src, DefaultAssumptions())
	eng.now = func() time.Time { return time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC) }

	wells := []ownership.WellInterest{
		{Well: models.Well{API: "42-041-00001"}, NRI: 0.5},
	}
	result, err := eng.Compute(context.Background(), wells, flatCurve(50, 0, boundary, april, mar25))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if len(result.Window.Dates) != 3 || result.Window.Dates[0] != "2024-03-31" {
		t.Errorf("window dates = %v, want boundary month 2024-03-31 included", result.Window.Dates)
	}

	var ltm *float64
	for _, row := range result.Summary {
		if row.Label == "LTM" {
			v := row.Value
			ltm = &v
		}
	}
	if ltm == nil {
		t.Fatal("no LTM summary row")
	}
	// 2335 net per month; the boundary month stays outside LTM.
	if math.Abs(*ltm-4670) > tol {
		t.Errorf("LTM = %v, want 4670 (two months, boundary excluded)", *ltm)
	}
}

func TestComputeTodayClampedToLastMonth(t *testing.T) {
	eng, wells, curve := scenarioEngine(DefaultAssumptions())
	// Clock far past the forecast: today snaps back to the last month.
	eng.now = func() time.Time { return time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC) }

	res, err := eng.Compute(context.Background(), wells, curve)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Window.Today != "2025-03-31" {
		t.Errorf("today = %q, want clamped 2025-03-31", res.Window.Today)
	}
}

func TestComputeEmptyOwner(t *testing.T) {
	eng := NewEngine(&fakeProduction{}, DefaultAssumptions())

	res, err := eng.Compute(context.Background(), nil, flatCurve(50, 3, monthEnd(2025, time.January)))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.NPV == nil || len(res.NPV) != len(SummaryRates) {
		t.Errorf("npv = %v, want one zero entry per summary rate", res.NPV)
	}
	if res.Cum.Dates == nil || len(res.Cum.Dates) != 0 {
		t.Errorf("cum dates = %v, want empty non-nil", res.Cum.Dates)
	}
	if res.Window.Dates == nil || res.Window.Today == "" {
		t.Errorf("window = %+v, want empty series with today set", res.Window)
	}
	if res.Summary == nil {
		t.Error("summary must be present")
	}
	if res.Stats.PV0 == nil || *res.Stats.PV0 != 0 {
		t.Errorf("PV0 = %v, want zero", res.Stats.PV0)
	}
}

func TestComputeSourceError(t *testing.T) {
	src := &fakeProduction{err: errors.New("warehouse down")}
	eng := NewEngine(src, DefaultAssumptions())
	wells := []ownership.WellInterest{{Well: models.Well{API: "W1"}, NRI: 1}}

	if _, err := eng.Compute(context.Background(), wells, flatCurve(50, 3, monthEnd(2025, time.January))); err == nil {
		t.Fatal("expected source error to propagate")
	}
}
