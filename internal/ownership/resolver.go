// Package ownership maps an authenticated owner identity to the wells
// they hold interest in. The warehouse encodes ownership as parallel
// pipe-delimited owner and interest lists per well; resolution is a
// case-insensitive scan of those lists with decimal-exact summation of
// the matched fractions.
package ownership

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/segminerals/ownerportal/pkg/models"
	"github.com/segminerals/ownerportal/pkg/utils"
)

// WellInterest is one well the owner holds interest in, with the summed
// net revenue interest fraction.
type WellInterest struct {
	models.Well
	NRI float64 `json:"nri"`
}

// WellsForOwner resolves the owner's wells from the raw ownership table.
// Wells are deduplicated by dash-insensitive API before matching (the
// warehouse carries repeated rows per well); within a well, the interest
// is the sum of every interest-list entry whose owner-list entry equals
// the owner, compared case-insensitively after trimming. Unparsable
// interest entries contribute zero. Wells with no owner match are
// omitted entirely.
func WellsForOwner(rows []models.OwnershipRow, owner string) []WellInterest {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return []WellInterest{}
	}

	seen := make(map[string]bool)
	out := []WellInterest{}
	for _, row := range rows {
		key := utils.NormalizeAPI(row.API)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		nri, matched := interestFor(row.OwnerList, row.InterestList, owner)
		if !matched {
			continue
		}
		out = append(out, WellInterest{Well: row.Well, NRI: nri})
	}
	return out
}

// interestFor sums the interest fractions at every list position whose
// owner entry matches. matched is false when no position matches at all.
func interestFor(ownerList, interestList, owner string) (float64, bool) {
	if ownerList == "" {
		return 0, false
	}

	owners := strings.Split(ownerList, "|")
	interests := strings.Split(interestList, "|")

	sum := decimal.Zero
	matched := false
	for i, entry := range owners {
		if !strings.EqualFold(strings.TrimSpace(entry), owner) {
			continue
		}
		matched = true
		if i >= len(interests) {
			continue
		}
		frac, err := decimal.NewFromString(strings.TrimSpace(interests[i]))
		if err != nil {
			continue // unparsable entries contribute zero
		}
		sum = sum.Add(frac)
	}
	if !matched {
		return 0, false
	}
	f, _ := sum.Float64()
	return f, true
}
