package models

import "time"

// Price deck names with special meaning to the blender.
const (
	// DeckHistorical is the fixed deck name carrying settled actuals.
	// Actuals always win over a forward deck for the same month.
	DeckHistorical = "HIST"

	// DeckInterpolated labels months the blender filled by linear
	// interpolation rather than from any source row.
	DeckInterpolated = "Interpolated"
)

// PricePoint is one month of a commodity price series. Months follow the
// month-end convention. A nil price means the source row had no usable
// numeric value for that stream.
type PricePoint struct {
	Deck  string    `json:"deck"`
	Month time.Time `json:"month"`
	Oil   *float64  `json:"oil"` // $/BBL
	Gas   *float64  `json:"gas"` // $/MMBTU
}
