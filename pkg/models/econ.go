package models

// Wire shapes for the economics endpoints. Dates are YYYY-MM-DD strings.
// Nullable numerics are pointers so a missing value serializes as JSON
// null rather than a dropped key; chart code on the other side indexes
// these arrays positionally.

// NPVEntry is one discount-rate row of the NPV table.
type NPVEntry struct {
	Rate    float64 `json:"rate"`
	NPV     float64 `json:"npv"`
	Payback *string `json:"payback"` // first month discounted cum NCF >= 0, null if never
}

// CumulativeSeries carries the running revenue and net-cash-flow totals.
type CumulativeSeries struct {
	Dates      []string  `json:"dates"`
	CumRevenue []float64 `json:"cum_revenue"`
	CumNCF     []float64 `json:"cum_ncf"`
}

// WindowSeries is the rolling monthly NCF window around "today"
// (today-12 months through today+24 months).
type WindowSeries struct {
	Dates []string  `json:"dates"`
	NCF   []float64 `json:"ncf"`
	Today string    `json:"today"`
}

// SummaryRow is one labeled aggregate (calendar year, LTM, NTM).
type SummaryRow struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// EconStats is the flat stats block of the economics response.
type EconStats struct {
	LTMOil *float64 `json:"ltm_oil"`
	LTMGas *float64 `json:"ltm_gas"`
	LTMCF  *float64 `json:"ltm_cf"`
	NTMOil *float64 `json:"ntm_oil"`
	NTMGas *float64 `json:"ntm_gas"`
	NTMCF  *float64 `json:"ntm_cf"`
	PV0    *float64 `json:"pv0"`
	PV10   *float64 `json:"pv10"`
	PV12   *float64 `json:"pv12"`
	PV14   *float64 `json:"pv14"`
	PV16   *float64 `json:"pv16"`
	PV18   *float64 `json:"pv18"`
}

// EconomicsResult is the complete payload of the economics endpoints.
// Every list field is always present; an owner with no mapped wells gets
// the same shape with empty series and zero NPVs.
type EconomicsResult struct {
	NPV     []NPVEntry       `json:"npv"`
	Cum     CumulativeSeries `json:"cum"`
	Window  WindowSeries     `json:"window"`
	Summary []SummaryRow     `json:"summary"`
	Stats   EconStats        `json:"stats"`
}

// BulkLookupResult is the payload of the bulk production lookup. ByAPI is
// keyed by the identifier string exactly as the caller supplied it, and
// Missing maps each unmatched input identifier to a reason; it is null
// when every identifier matched.
type BulkLookupResult struct {
	Count   int                        `json:"count"`
	Rows    []ProductionRow            `json:"rows"`
	ByAPI   map[string][]ProductionRow `json:"by_api"`
	Missing map[string]string          `json:"missing"`
}
