package warehouse

import (
	"context"
	"time"

	"github.com/segminerals/ownerportal/pkg/models"
	"github.com/segminerals/ownerportal/pkg/utils"
)

// The three query shapes the numeric pipeline consumes, plus the document
// directory. Table names live in one place so a schema move is one edit.
const (
	tableWells      = "WELLS.MINERALS.RAW_WELL_DATA"
	tableProduction = "WELLS.MINERALS.WELL_PRODUCTION"
	tablePrices     = "WELLS.MINERALS.PRICE_DECKS"
	tableDocuments  = "WELLS.MINERALS.USER_DOC_DIRECTORY"
)

// OwnershipRows returns the full denormalized well+ownership table. One
// well may appear on multiple rows; the ownership cache dedupes.
func (c *Client) OwnershipRows(ctx context.Context) ([]models.OwnershipRow, error) {
	rows, err := c.FetchAll(ctx, `
		SELECT API_UWI, WELL_NAME, OPERATOR, COUNTY, STATE,
		       LATITUDE, LONGITUDE, COMPLETIONDATE,
		       OWNER, NRI_INTEREST
		FROM `+tableWells+`
		WHERE API_UWI IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}

	out := make([]models.OwnershipRow, 0, len(rows))
	for _, r := range rows {
		rec := models.OwnershipRow{
			Well: models.Well{
				API:       r.Str("API_UWI"),
				Name:      r.Str("WELL_NAME"),
				Operator:  r.Str("OPERATOR"),
				County:    r.Str("COUNTY"),
				State:     r.Str("STATE"),
				Latitude:  r.Float("LATITUDE"),
				Longitude: r.Float("LONGITUDE"),
			},
			OwnerList:    r.Str("OWNER"),
			InterestList: r.Str("NRI_INTEREST"),
		}
		if t := r.Time("COMPLETIONDATE"); t != nil {
			year := t.Year()
			rec.CompletionYear = &year
		}
		out = append(out, rec)
	}
	return out, nil
}

// ProductionRows returns production history and parametric forecast rows
// for the given well set. Matching is dash-insensitive on both sides:
// identifiers are normalized here and the stored key is stripped in SQL.
func (c *Client) ProductionRows(ctx context.Context, wellIDs []string) ([]models.ProductionRow, error) {
	if len(wellIDs) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(wellIDs))
	for _, id := range wellIDs {
		args = append(args, utils.NormalizeAPI(id))
	}

	rows, err := c.FetchAll(ctx, `
		SELECT API_UWI, PRODUCINGMONTH,
		       LIQUIDSPROD_BBL, GASPROD_MCF,
		       OIL_FCST_BBL, GAS_FCST_MCF
		FROM `+tableProduction+`
		WHERE REPLACE(API_UWI, '-', '') IN (`+inPlaceholders(len(args))+`)
		ORDER BY API_UWI, PRODUCINGMONTH
	`, args...)
	if err != nil {
		return nil, err
	}

	out := make([]models.ProductionRow, 0, len(rows))
	for _, r := range rows {
		month := r.Time("PRODUCINGMONTH")
		if month == nil {
			continue
		}
		out = append(out, models.ProductionRow{
			API:         r.Str("API_UWI"),
			Month:       *month,
			LiquidsHist: r.Float("LIQUIDSPROD_BBL"),
			GasHist:     r.Float("GASPROD_MCF"),
			OilForecast: r.Float("OIL_FCST_BBL"),
			GasForecast: r.Float("GAS_FCST_MCF"),
		})
	}
	return out, nil
}

// PriceRows returns every price row for the named decks, unsorted and
// undeduplicated; the blender owns those rules.
func (c *Client) PriceRows(ctx context.Context, deckNames ...string) ([]models.PricePoint, error) {
	if len(deckNames) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(deckNames))
	for _, d := range deckNames {
		args = append(args, d)
	}

	rows, err := c.FetchAll(ctx, `
		SELECT PRICE_DECK, PRICE_MONTH, OIL_PRICE, GAS_PRICE
		FROM `+tablePrices+`
		WHERE PRICE_DECK IN (`+inPlaceholders(len(args))+`)
	`, args...)
	if err != nil {
		return nil, err
	}

	out := make([]models.PricePoint, 0, len(rows))
	for _, r := range rows {
		month := r.Time("PRICE_MONTH")
		if month == nil {
			continue
		}
		out = append(out, models.PricePoint{
			Deck:  r.Str("PRICE_DECK"),
			Month: *month,
			Oil:   r.Float("OIL_PRICE"),
			Gas:   r.Float("GAS_PRICE"),
		})
	}
	return out, nil
}

// MapPoints returns completed wells with coordinates for the map page.
func (c *Client) MapPoints(ctx context.Context) ([]models.Well, error) {
	rows, err := c.FetchAll(ctx, `
		SELECT API_UWI, WELL_NAME, LATITUDE, LONGITUDE, COMPLETIONDATE
		FROM `+tableWells+`
		WHERE COMPLETIONDATE IS NOT NULL
		  AND LATITUDE IS NOT NULL
		  AND LONGITUDE IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}

	out := make([]models.Well, 0, len(rows))
	for _, r := range rows {
		w := models.Well{
			API:       r.Str("API_UWI"),
			Name:      r.Str("WELL_NAME"),
			Latitude:  r.Float("LATITUDE"),
			Longitude: r.Float("LONGITUDE"),
		}
		if t := r.Time("COMPLETIONDATE"); t != nil {
			year := t.Year()
			w.CompletionYear = &year
		}
		out = append(out, w)
	}
	return out, nil
}

// ─── Document directory ────────────────────────────────────────────

// DocumentRecord is a document row plus its storage key and owner, used
// internally by the docs service for authorization checks.
type DocumentRecord struct {
	models.Document
	OwnerUserID string
	S3Key       string
}

// GetDocument fetches one document row by id, nil if absent.
func (c *Client) GetDocument(ctx context.Context, id string) (*DocumentRecord, error) {
	row, err := c.FetchOne(ctx, `
		SELECT id, owner_user_id, s3_key, filename, content_type, bytes, note, created_at
		FROM `+tableDocuments+`
		WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	rec := docFromRow(row)
	return &rec, nil
}

// ListDocuments returns the documents owned by a user, newest first.
func (c *Client) ListDocuments(ctx context.Context, ownerUserID string) ([]DocumentRecord, error) {
	rows, err := c.FetchAll(ctx, `
		SELECT id, owner_user_id, s3_key, filename, content_type, bytes, note, created_at
		FROM `+tableDocuments+`
		WHERE owner_user_id = ?
		ORDER BY created_at DESC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, docFromRow(r))
	}
	return out, nil
}

// InsertDocument records a finalized upload.
func (c *Client) InsertDocument(ctx context.Context, rec DocumentRecord) error {
	_, err := c.Exec(ctx, `
		INSERT INTO `+tableDocuments+`
		(id, owner_user_id, s3_key, filename, content_type, bytes, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.OwnerUserID, rec.S3Key, rec.Filename, rec.ContentType, rec.Bytes, rec.Note)
	return err
}

// UpdateDocumentNote replaces the note on a document the user owns.
func (c *Client) UpdateDocumentNote(ctx context.Context, id, ownerUserID string, note *string) error {
	_, err := c.Exec(ctx, `
		UPDATE `+tableDocuments+`
		SET note = ?
		WHERE id = ? AND owner_user_id = ?
	`, note, id, ownerUserID)
	return err
}

// DeleteDocument removes a document row the user owns.
func (c *Client) DeleteDocument(ctx context.Context, id, ownerUserID string) error {
	_, err := c.Exec(ctx, `
		DELETE FROM `+tableDocuments+`
		WHERE id = ? AND owner_user_id = ?
	`, id, ownerUserID)
	return err
}

func docFromRow(r Row) DocumentRecord {
	rec := DocumentRecord{
		Document: models.Document{
			ID:          r.Str("ID"),
			Filename:    r.Str("FILENAME"),
			Bytes:       r.Int64("BYTES"),
			ContentType: r.Str("CONTENT_TYPE"),
		},
		OwnerUserID: r.Str("OWNER_USER_ID"),
		S3Key:       r.Str("S3_KEY"),
	}
	if note := r.Str("NOTE"); note != "" {
		rec.Note = &note
	}
	if t := r.Time("CREATED_AT"); t != nil {
		created := t.UTC().Format(time.RFC3339)
		rec.CreatedAt = &created
	}
	return rec
}
