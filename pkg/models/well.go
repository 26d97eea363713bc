// Package models defines the core data structures shared across the
// owner portal: warehouse row shapes, the blended price curve, and the
// JSON result payloads the API serves.
package models

import (
	"encoding/json"
	"time"

	"github.com/segminerals/ownerportal/pkg/utils"
)

// Well holds the descriptive attributes of a single well as carried on
// the denormalized ownership table in the warehouse.
type Well struct {
	API            string   `json:"api"` // as stored, possibly dashed
	Name           string   `json:"name"`
	Operator       string   `json:"operator,omitempty"`
	County         string   `json:"county,omitempty"`
	State          string   `json:"state,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	CompletionYear *int     `json:"completion_year,omitempty"`
}

// OwnershipRow is one warehouse row of the well+ownership table. OwnerList
// and InterestList are parallel pipe-delimited encodings: the owner at
// position i holds the interest at position i. Interest fractions are not
// validated to sum to 1 per well; the source data is taken as-is.
type OwnershipRow struct {
	Well
	OwnerList    string `json:"-"` // "John Smith|Jane Doe"
	InterestList string `json:"-"` // "0.25|0.10"
}

// ProductionRow is one (well, month) of production history and/or
// parametric forecast from the warehouse. Historical volumes win over
// forecast volumes when both are present; nil means the column was NULL.
type ProductionRow struct {
	API          string     `json:"api"`
	Month        time.Time  `json:"month"`
	LiquidsHist  *float64   `json:"liquids_hist,omitempty"`  // BBL, actuals
	GasHist      *float64   `json:"gas_hist,omitempty"`      // MCF, actuals
	OilForecast  *float64   `json:"oil_forecast,omitempty"`  // BBL, model
	GasForecast  *float64   `json:"gas_forecast,omitempty"`  // MCF, model
}

// MarshalJSON serializes Month in the portal's wire date format,
// YYYY-MM-DD, matching the string dates of the economics payloads.
func (r ProductionRow) MarshalJSON() ([]byte, error) {
	type alias ProductionRow
	return json.Marshal(struct {
		alias
		Month string `json:"month"`
	}{alias(r), utils.FormatDate(r.Month)})
}

// UnmarshalJSON parses the YYYY-MM-DD wire form back into Month.
func (r *ProductionRow) UnmarshalJSON(data []byte) error {
	type alias ProductionRow
	aux := struct {
		*alias
		Month string `json:"month"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Month == "" {
		r.Month = time.Time{}
		return nil
	}
	month, err := utils.ParseDate(aux.Month)
	if err != nil {
		return err
	}
	r.Month = month
	return nil
}

// OilVolume resolves the working-interest oil volume for the row:
// history when present, else forecast, else zero.
func (r ProductionRow) OilVolume() float64 {
	if r.LiquidsHist != nil {
		return *r.LiquidsHist
	}
	if r.OilForecast != nil {
		return *r.OilForecast
	}
	return 0
}

// GasVolume resolves the working-interest gas volume for the row with
// the same history-first fallback as OilVolume.
func (r ProductionRow) GasVolume() float64 {
	if r.GasHist != nil {
		return *r.GasHist
	}
	if r.GasForecast != nil {
		return *r.GasForecast
	}
	return 0
}
