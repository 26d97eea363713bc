// Package econ implements the cash-flow pipeline: it joins production
// volumes with the blended price curve and owner interests, stacks
// deductions and taxes, and derives net cash flow, NPV, payback and the
// windowed summaries the portal displays. Results are computed fresh per
// request and never persisted.
package econ

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/segminerals/ownerportal/internal/config"
	"github.com/segminerals/ownerportal/internal/ownership"
	"github.com/segminerals/ownerportal/internal/pricing"
	"github.com/segminerals/ownerportal/pkg/models"
	"github.com/segminerals/ownerportal/pkg/utils"
)

// Discount-rate sets. SummaryRates drives the NPV table on the summary
// endpoint; PVRates drives the flat pv0..pv18 stats block.
var (
	SummaryRates = []float64{0, 0.05, 0.10}
	PVRates      = []float64{0, 0.10, 0.12, 0.14, 0.16, 0.18}
)

// Assumptions is the immutable set of economic parameters a single
// Compute call runs under. Build one from config at startup; never
// mutate it between requests.
type Assumptions struct {
	// NRIAfterTax selects where the owner interest is applied: false
	// scales volumes before any dollar math (the default), true scales
	// the dollar columns after taxes instead.
	NRIAfterTax bool

	GasShrinkFactor float64 // fraction of raw gas surviving processing
	NGLYieldPerMMCF float64 // BBL of NGL per MMCF of shrunk gas

	OilBasisPct, OilBasisAmt float64
	GasBasisPct, GasBasisAmt float64
	NGLBasisPct, NGLBasisAmt float64 // applied to the gas price index

	OilGPTRate, GasGPTRate, NGLGPTRate float64 // $/unit gathering-processing-transport
	OilOPTRate, GasOPTRate, NGLOPTRate float64 // $/unit other operating

	OilSevTaxRate, GasSevTaxRate, NGLSevTaxRate float64
	AdValoremRate                               float64
}

// DefaultAssumptions returns the documented defaults: 90% gas shrink,
// 10 BBL NGL per MMCF, pass-through basis, zero deductions, severance
// 4.6/7.5/4.6 percent and 2 percent ad valorem, NRI applied pre-tax.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		GasShrinkFactor: 0.9,
		NGLYieldPerMMCF: 10,
		OilBasisPct:     1,
		GasBasisPct:     1,
		NGLBasisPct:     1,
		OilSevTaxRate:   0.046,
		GasSevTaxRate:   0.075,
		NGLSevTaxRate:   0.046,
		AdValoremRate:   0.02,
	}
}

// AssumptionsFromConfig copies the econ section of the configuration
// into an engine-ready value.
func AssumptionsFromConfig(cfg config.EconConfig) Assumptions {
	return Assumptions{
		NRIAfterTax:     cfg.NRIAfterTax,
		GasShrinkFactor: cfg.GasShrinkFactor,
		NGLYieldPerMMCF: cfg.NGLYieldPerMMCF,
		OilBasisPct:     cfg.OilBasisPct,
		OilBasisAmt:     cfg.OilBasisAmt,
		GasBasisPct:     cfg.GasBasisPct,
		GasBasisAmt:     cfg.GasBasisAmt,
		NGLBasisPct:     cfg.NGLBasisPct,
		NGLBasisAmt:     cfg.NGLBasisAmt,
		OilGPTRate:      cfg.OilGPTRate,
		GasGPTRate:      cfg.GasGPTRate,
		NGLGPTRate:      cfg.NGLGPTRate,
		OilOPTRate:      cfg.OilOPTRate,
		GasOPTRate:      cfg.GasOPTRate,
		NGLOPTRate:      cfg.NGLOPTRate,
		OilSevTaxRate:   cfg.OilSevTaxRate,
		GasSevTaxRate:   cfg.GasSevTaxRate,
		NGLSevTaxRate:   cfg.NGLSevTaxRate,
		AdValoremRate:   cfg.AdValoremRate,
	}
}

// ProductionSource supplies production rows for a well set. Matching is
// dash-insensitive on both sides; the warehouse client implements this.
type ProductionSource interface {
	ProductionRows(ctx context.Context, wellIDs []string) ([]models.ProductionRow, error)
}

// Engine runs the economics pipeline.
type Engine struct {
	src    ProductionSource
	assume Assumptions
	now    func() time.Time
}

// NewEngine builds an engine over the given production source and
// assumptions.
func NewEngine(src ProductionSource, assume Assumptions) *Engine {
	return &Engine{src: src, assume: assume, now: time.Now}
}

// monthTotal accumulates one calendar month across all wells. Volumes
// follow the interest mode: net volumes in pre-tax mode, working-interest
// volumes in after-tax mode.
type monthTotal struct {
	month   time.Time
	oil     float64
	gas     float64
	revenue float64
	ncf     float64
}

// Compute runs the full pipeline for the owner's wells against the
// blended price curve. An empty well set is not an error: the response
// keeps its shape with empty series and zero NPVs.
func (e *Engine) Compute(ctx context.Context, wells []ownership.WellInterest, curve *pricing.Curve) (*models.EconomicsResult, error) {
	if len(wells) == 0 {
		return e.emptyResult(), nil
	}

	ids := make([]string, 0, len(wells))
	nriByAPI := make(map[string]float64, len(wells))
	for _, w := range wells {
		ids = append(ids, w.API)
		nriByAPI[utils.NormalizeAPI(w.API)] = w.NRI
	}

	rows, err := e.src.ProductionRows(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching production rows: %w", err)
	}
	if len(rows) == 0 {
		return e.emptyResult(), nil
	}

	byMonth := make(map[time.Time]*monthTotal)
	for _, row := range rows {
		nri := nriByAPI[utils.NormalizeAPI(row.API)]

		// Production months arrive on assorted day conventions; the
		// price curve is keyed month-end. Align before joining. A month
		// with no price row prices at zero and stays in the series.
		month := utils.MonthEnd(row.Month)
		oilPrice, gasPrice, _ := curve.At(month)

		oil, gas, revenue, ncf := e.rowEconomics(row.OilVolume(), row.GasVolume(), oilPrice, gasPrice, nri)

		tot := byMonth[month]
		if tot == nil {
			tot = &monthTotal{month: month}
			byMonth[month] = tot
		}
		tot.oil += oil
		tot.gas += gas
		tot.revenue += revenue
		tot.ncf += ncf
	}

	months := make([]*monthTotal, 0, len(byMonth))
	for _, tot := range byMonth {
		months = append(months, tot)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].month.Before(months[j].month) })

	today := utils.MonthEnd(e.now())
	if last := months[len(months)-1].month; last.Before(today) {
		today = last
	}

	res := &models.EconomicsResult{
		NPV:     e.npvTable(months, SummaryRates),
		Cum:     cumulativeSeries(months),
		Window:  windowSeries(months, today),
		Summary: summaryRows(months, today),
		Stats:   e.stats(months, today),
	}
	return res, nil
}

// rowEconomics computes one (well, month) row. Returned volumes are the
// oil and gas columns the summaries report, in the mode's convention.
func (e *Engine) rowEconomics(oilVol, gasVol, oilPrice, gasPrice, nri float64) (oil, gas, revenue, ncf float64) {
	a := e.assume

	if !a.NRIAfterTax {
		oilVol *= nri
		gasVol *= nri
	}
	nglVol := gasVol * a.GasShrinkFactor / 1000 * a.NGLYieldPerMMCF

	oilRealized := oilPrice*a.OilBasisPct + a.OilBasisAmt
	gasRealized := gasPrice*a.GasBasisPct + a.GasBasisAmt
	nglRealized := gasPrice*a.NGLBasisPct + a.NGLBasisAmt

	oilRev := oilVol * oilRealized
	gasRev := gasVol * gasRealized
	nglRev := nglVol * nglRealized
	gross := oilRev + gasRev + nglRev

	gpt := oilVol*a.OilGPTRate + gasVol*a.GasGPTRate + nglVol*a.NGLGPTRate
	opt := oilVol*a.OilOPTRate + gasVol*a.GasOPTRate + nglVol*a.NGLOPTRate

	sev := oilRev*a.OilSevTaxRate + gasRev*a.GasSevTaxRate + nglRev*a.NGLSevTaxRate
	adval := gross * a.AdValoremRate

	net := gross - gpt - opt - sev - adval

	if a.NRIAfterTax {
		gross *= nri
		net *= nri
	}
	return oilVol, gasVol, gross, net
}

// ─── Series and summaries ──────────────────────────────────────────

// npv discounts the monthly series at an annual rate using the zero-based
// month index: sum of ncf / (1+r)^(idx/12).
func npv(months []*monthTotal, rate float64) float64 {
	total := 0.0
	for idx, tot := range months {
		total += tot.ncf / math.Pow(1+rate, float64(idx)/12)
	}
	return total
}

// payback returns the first month at which the discounted cumulative cash
// flow turns non-negative, nil if it never does.
func payback(months []*monthTotal, rate float64) *string {
	cum := 0.0
	for idx, tot := range months {
		cum += tot.ncf / math.Pow(1+rate, float64(idx)/12)
		if cum >= 0 {
			s := utils.FormatDate(tot.month)
			return &s
		}
	}
	return nil
}

func (e *Engine) npvTable(months []*monthTotal, rates []float64) []models.NPVEntry {
	entries := make([]models.NPVEntry, 0, len(rates))
	for _, rate := range rates {
		entries = append(entries, models.NPVEntry{
			Rate:    rate,
			NPV:     npv(months, rate),
			Payback: payback(months, rate),
		})
	}
	return entries
}

func cumulativeSeries(months []*monthTotal) models.CumulativeSeries {
	series := models.CumulativeSeries{
		Dates:      make([]string, 0, len(months)),
		CumRevenue: make([]float64, 0, len(months)),
		CumNCF:     make([]float64, 0, len(months)),
	}
	cumRev, cumNCF := 0.0, 0.0
	for _, tot := range months {
		cumRev += tot.revenue
		cumNCF += tot.ncf
		series.Dates = append(series.Dates, utils.FormatDate(tot.month))
		series.CumRevenue = append(series.CumRevenue, cumRev)
		series.CumNCF = append(series.CumNCF, cumNCF)
	}
	return series
}

// windowSeries slices the monthly NCF to today-12 months through
// today+24 months. Months without data are simply absent, not zero
// padded. The lower bound is inclusive, unlike the trailing-twelve sum
// in trailingNext: the chart keeps the month twelve back as lead-in,
// while LTM must cover exactly twelve months.
func windowSeries(months []*monthTotal, today time.Time) models.WindowSeries {
	from := utils.AddMonths(today, -12)
	to := utils.AddMonths(today, 24)

	w := models.WindowSeries{
		Dates: []string{},
		NCF:   []float64{},
		Today: utils.FormatDate(today),
	}
	for _, tot := range months {
		if tot.month.Before(from) || tot.month.After(to) {
			continue
		}
		w.Dates = append(w.Dates, utils.FormatDate(tot.month))
		w.NCF = append(w.NCF, tot.ncf)
	}
	return w
}

// summaryRows emits six calendar years of NCF starting with today's
// year, then the trailing and next twelve month totals.
func summaryRows(months []*monthTotal, today time.Time) []models.SummaryRow {
	rows := make([]models.SummaryRow, 0, 8)
	for year := today.Year(); year < today.Year()+6; year++ {
		total := 0.0
		for _, tot := range months {
			if tot.month.Year() == year {
				total += tot.ncf
			}
		}
		rows = append(rows, models.SummaryRow{Label: strconv.Itoa(year), Value: total})
	}

	ltm, ntm := trailingNext(months, today)
	rows = append(rows,
		models.SummaryRow{Label: "LTM", Value: ltm.ncf},
		models.SummaryRow{Label: "NTM", Value: ntm.ncf},
	)
	return rows
}

// trailingNext sums the (today-12m, today] and (today, today+12m]
// windows.
func trailingNext(months []*monthTotal, today time.Time) (ltm, ntm monthTotal) {
	ltmFrom := utils.AddMonths(today, -12)
	ntmTo := utils.AddMonths(today, 12)
	for _, tot := range months {
		switch {
		case tot.month.After(ltmFrom) && !tot.month.After(today):
			ltm.oil += tot.oil
			ltm.gas += tot.gas
			ltm.ncf += tot.ncf
		case tot.month.After(today) && !tot.month.After(ntmTo):
			ntm.oil += tot.oil
			ntm.gas += tot.gas
			ntm.ncf += tot.ncf
		}
	}
	return ltm, ntm
}

func (e *Engine) stats(months []*monthTotal, today time.Time) models.EconStats {
	ltm, ntm := trailingNext(months, today)

	pv := make(map[float64]float64, len(PVRates))
	for _, rate := range PVRates {
		pv[rate] = npv(months, rate)
	}

	fptr := func(v float64) *float64 { return &v }
	return models.EconStats{
		LTMOil: fptr(ltm.oil),
		LTMGas: fptr(ltm.gas),
		LTMCF:  fptr(ltm.ncf),
		NTMOil: fptr(ntm.oil),
		NTMGas: fptr(ntm.gas),
		NTMCF:  fptr(ntm.ncf),
		PV0:    fptr(pv[0]),
		PV10:   fptr(pv[0.10]),
		PV12:   fptr(pv[0.12]),
		PV14:   fptr(pv[0.14]),
		PV16:   fptr(pv[0.16]),
		PV18:   fptr(pv[0.18]),
	}
}

// emptyResult is the well-shaped zero response for an owner with no
// mapped wells or no production rows: every list present and empty,
// every stat zero.
func (e *Engine) emptyResult() *models.EconomicsResult {
	today := utils.MonthEnd(e.now())

	entries := make([]models.NPVEntry, 0, len(SummaryRates))
	for _, rate := range SummaryRates {
		entries = append(entries, models.NPVEntry{Rate: rate})
	}

	zptr := func() *float64 { v := 0.0; return &v }
	return &models.EconomicsResult{
		NPV: entries,
		Cum: models.CumulativeSeries{
			Dates:      []string{},
			CumRevenue: []float64{},
			CumNCF:     []float64{},
		},
		Window: models.WindowSeries{
			Dates: []string{},
			NCF:   []float64{},
			Today: utils.FormatDate(today),
		},
		Summary: []models.SummaryRow{},
		Stats: models.EconStats{
			LTMOil: zptr(), LTMGas: zptr(), LTMCF: zptr(),
			NTMOil: zptr(), NTMGas: zptr(), NTMCF: zptr(),
			PV0: zptr(), PV10: zptr(), PV12: zptr(),
			PV14: zptr(), PV16: zptr(), PV18: zptr(),
		},
	}
}
