// Package pricing builds the blended commodity price curve the economics
// engine joins against: settled actuals (the HIST deck) merged with one
// named forward deck, reindexed onto a complete month-end grid with
// linear interpolation over any gaps.
package pricing

import (
	"sort"
	"time"

	"github.com/segminerals/ownerportal/pkg/models"
	"github.com/segminerals/ownerportal/pkg/utils"
)

var (
	// gridHorizon is the far end of the interpolation grid. Forward
	// decks rarely quote past the early 2030s; the grid extends well
	// beyond so trailing months hold the last quoted price.
	gridHorizon = time.Date(2075, time.December, 1, 0, 0, 0, 0, time.UTC)

	// outputCutoff bounds the blended curve actually served. Months
	// after this date are discarded no matter what the decks quote.
	outputCutoff = time.Date(2038, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Curve is a blended price series on the month-end calendar: every month
// present has both an oil and a gas price.
type Curve struct {
	Points []models.PricePoint

	byMonth map[time.Time]int
}

// At returns the oil and gas price for the month containing t, aligned
// to month end. ok is false when the curve has no row for that month.
func (c *Curve) At(t time.Time) (oil, gas float64, ok bool) {
	if c == nil || len(c.Points) == 0 {
		return 0, 0, false
	}
	i, ok := c.byMonth[utils.MonthEnd(t)]
	if !ok {
		return 0, 0, false
	}
	p := c.Points[i]
	return *p.Oil, *p.Gas, true
}

// Start returns the first month of the curve, zero if empty.
func (c *Curve) Start() time.Time {
	if c == nil || len(c.Points) == 0 {
		return time.Time{}
	}
	return c.Points[0].Month
}

// End returns the last month of the curve, zero if empty.
func (c *Curve) End() time.Time {
	if c == nil || len(c.Points) == 0 {
		return time.Time{}
	}
	return c.Points[len(c.Points)-1].Month
}

// Blend merges the HIST series with the named forward deck into a
// complete monthly curve. HIST rows win any month both sides quote.
// Months missing from both sides are linearly interpolated and labeled
// "Interpolated"; months after the last quote hold the last known price;
// months before the first usable quote are dropped, as is anything past
// the output cutoff. An active deck with no rows degrades to HIST alone.
func Blend(activeDeck string, rows []models.PricePoint) *Curve {
	// HIST first so actuals win the month dedupe below.
	combined := make([]models.PricePoint, 0, len(rows))
	for _, r := range rows {
		if r.Deck == models.DeckHistorical {
			combined = append(combined, r)
		}
	}
	if activeDeck != models.DeckHistorical {
		for _, r := range rows {
			if r.Deck == activeDeck {
				combined = append(combined, r)
			}
		}
	}

	// Dedupe by month keeping the first occurrence.
	seen := make(map[time.Time]models.PricePoint)
	months := make([]time.Time, 0, len(combined))
	for _, r := range combined {
		m := utils.MonthEnd(r.Month)
		if _, dup := seen[m]; dup {
			continue
		}
		r.Month = m
		seen[m] = r
		months = append(months, m)
	}
	if len(months) == 0 {
		return &Curve{byMonth: map[time.Time]int{}}
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	// Reindex onto the full month-end grid.
	grid := utils.MonthEndGrid(months[0], gridHorizon)
	oil := make([]*float64, len(grid))
	gas := make([]*float64, len(grid))
	decks := make([]string, len(grid))
	for i, m := range grid {
		if p, ok := seen[m]; ok {
			oil[i] = p.Oil
			gas[i] = p.Gas
			decks[i] = p.Deck
		} else {
			decks[i] = models.DeckInterpolated
		}
	}

	interpolate(oil)
	interpolate(gas)

	curve := &Curve{byMonth: make(map[time.Time]int)}
	for i, m := range grid {
		if m.After(outputCutoff) {
			break
		}
		// Still missing a price after interpolation (leading gap):
		// the month is unusable, drop it.
		if oil[i] == nil || gas[i] == nil {
			continue
		}
		curve.byMonth[m] = len(curve.Points)
		curve.Points = append(curve.Points, models.PricePoint{
			Deck:  decks[i],
			Month: m,
			Oil:   oil[i],
			Gas:   gas[i],
		})
	}
	return curve
}

// interpolate fills nil gaps in-place: linear between known neighbors,
// last known value held flat for trailing gaps, leading gaps untouched.
func interpolate(vals []*float64) {
	prev := -1 // index of last known value
	for i := 0; i < len(vals); i++ {
		if vals[i] == nil {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			lo, hi := *vals[prev], *vals[i]
			span := float64(i - prev)
			for j := prev + 1; j < i; j++ {
				v := lo + (hi-lo)*float64(j-prev)/span
				vals[j] = &v
			}
		}
		prev = i
	}
	// Trailing gap: hold the last known value.
	if prev >= 0 {
		for j := prev + 1; j < len(vals); j++ {
			v := *vals[prev]
			vals[j] = &v
		}
	}
}
