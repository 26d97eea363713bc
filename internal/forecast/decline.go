// Package forecast implements Arps decline-curve production forecasting:
// a deterministic rate sequence from initial rate, decline rate, and
// b-factor, plus helpers to splice parametric forecasts onto production
// history for multiple wells.
package forecast

import (
	"math"
	"sort"
)

// Decline computes an Arps decline curve: one production rate per period,
// starting at period 1. b == 0 selects exponential decline
// qi·e^(−di·t); otherwise hyperbolic qi / (1 + b·di·t)^(1/b).
// periods <= 0 yields an empty (non-nil) result.
func Decline(qi, di, b float64, periods int) []float64 {
	if periods <= 0 {
		return []float64{}
	}

	rates := make([]float64, periods)
	for i := 0; i < periods; i++ {
		t := float64(i + 1)
		if b == 0 {
			rates[i] = qi * math.Exp(-di*t)
		} else {
			rates[i] = qi / math.Pow(1+b*di*t, 1/b)
		}
	}
	return rates
}

// Point is one (well, period) production rate, either historical or
// generated by Decline.
type Point struct {
	WellID string  `json:"well_id"`
	Period int     `json:"period"`
	Rate   float64 `json:"rate"`
}

// DeclineParams holds per-well Arps parameters.
type DeclineParams struct {
	WellID  string  `json:"well_id"`
	Qi      float64 `json:"qi"`
	Di      float64 `json:"di"`
	B       float64 `json:"b"`
	Periods int     `json:"periods"`
}

// Combine generates decline forecasts for each parameter set and appends
// them after the historical points, preserving input order. Wells with a
// non-positive period count are skipped silently.
func Combine(history []Point, params []DeclineParams) []Point {
	out := make([]Point, 0, len(history))
	out = append(out, history...)

	for _, p := range params {
		if p.Periods <= 0 {
			continue
		}
		rates := Decline(p.Qi, p.Di, p.B, p.Periods)
		for i, rate := range rates {
			out = append(out, Point{
				WellID: p.WellID,
				Period: i + 1,
				Rate:   rate,
			})
		}
	}
	return out
}

// PeriodTotal is the summed rate across wells for one period.
type PeriodTotal struct {
	Period int     `json:"period"`
	Rate   float64 `json:"rate"`
}

// AggregateByPeriod sums rates across wells per period, ordered by
// period, for charting stacked multi-well forecasts.
func AggregateByPeriod(points []Point) []PeriodTotal {
	if len(points) == 0 {
		return []PeriodTotal{}
	}

	sums := make(map[int]float64)
	for _, p := range points {
		sums[p.Period] += p.Rate
	}

	periods := make([]int, 0, len(sums))
	for period := range sums {
		periods = append(periods, period)
	}
	sort.Ints(periods)

	out := make([]PeriodTotal, 0, len(periods))
	for _, period := range periods {
		out = append(out, PeriodTotal{Period: period, Rate: sums[period]})
	}
	return out
}
