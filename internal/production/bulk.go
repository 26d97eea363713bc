// Package production implements the bulk production lookup: large well
// identifier lists are deduplicated, chunked into bounded warehouse
// queries, and the results regrouped under the caller's original
// identifier spellings.
package production

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/segminerals/ownerportal/pkg/models"
	"github.com/segminerals/ownerportal/pkg/utils"
)

const (
	// MaxWells bounds one bulk request; larger lists are rejected before
	// any warehouse round trip.
	MaxWells = 5000

	// chunkSize bounds a single IN-list query.
	chunkSize = 1000

	missingReason = "No production data found"
)

// ErrTooManyWells is returned when a bulk request exceeds MaxWells
// identifiers after deduplication.
var ErrTooManyWells = fmt.Errorf("too many well identifiers: limit is %d", MaxWells)

// Source supplies production rows for a set of well identifiers,
// matching dash-insensitively.
type Source interface {
	ProductionRows(ctx context.Context, wellIDs []string) ([]models.ProductionRow, error)
}

// Service runs bulk lookups against a production source.
type Service struct {
	src Source
}

// NewService builds a bulk lookup service.
func NewService(src Source) *Service {
	return &Service{src: src}
}

// Lookup fetches production for the given identifiers. Duplicates are
// collapsed keeping the first spelling; identifiers with no matching
// rows are reported under Missing rather than dropped. Chunks are
// fetched concurrently and results regrouped by the original identifier
// strings, so "42-041-00001" and "4204100001" land under whichever the
// caller sent.
func (s *Service) Lookup(ctx context.Context, ids []string) (*models.BulkLookupResult, error) {
	unique := dedupe(ids)
	if len(unique) > MaxWells {
		return nil, ErrTooManyWells
	}

	res := &models.BulkLookupResult{
		Rows:  []models.ProductionRow{},
		ByAPI: map[string][]models.ProductionRow{},
	}
	if len(unique) == 0 {
		return res, nil
	}

	chunks := chunk(unique, chunkSize)
	results := make([][]models.ProductionRow, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, part := range chunks {
		g.Go(func() error {
			rows, err := s.src.ProductionRows(gctx, part)
			if err != nil {
				return fmt.Errorf("fetching production chunk %d: %w", i, err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Regroup under the caller's spellings via normalized keys.
	original := make(map[string]string, len(unique))
	for _, id := range unique {
		original[utils.NormalizeAPI(id)] = id
	}

	for _, rows := range results {
		for _, row := range rows {
			id, ok := original[utils.NormalizeAPI(row.API)]
			if !ok {
				// Row for an identifier nobody asked for; the warehouse
				// should not produce these, skip rather than invent a key.
				continue
			}
			res.Rows = append(res.Rows, row)
			res.ByAPI[id] = append(res.ByAPI[id], row)
		}
	}
	res.Count = len(res.Rows)

	sort.Slice(res.Rows, func(i, j int) bool {
		if res.Rows[i].API != res.Rows[j].API {
			return res.Rows[i].API < res.Rows[j].API
		}
		return res.Rows[i].Month.Before(res.Rows[j].Month)
	})
	for _, rows := range res.ByAPI {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Month.Before(rows[j].Month) })
	}

	for _, id := range unique {
		if _, ok := res.ByAPI[id]; !ok {
			if res.Missing == nil {
				res.Missing = map[string]string{}
			}
			res.Missing[id] = missingReason
		}
	}
	return res, nil
}

// dedupe collapses duplicate identifiers dash-insensitively, keeping the
// first spelling in input order. Empty identifiers are dropped.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		key := utils.NormalizeAPI(id)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, id)
	}
	return out
}

// chunk splits ids into slices of at most size elements.
func chunk(ids []string, size int) [][]string {
	var parts [][]string
	for len(ids) > size {
		parts = append(parts, ids[:size])
		ids = ids[size:]
	}
	return append(parts, ids)
}
