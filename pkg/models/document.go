package models

// Document is one row of the user document directory: metadata for an
// object uploaded to the document bucket via a pre-signed URL.
type Document struct {
	ID          string  `json:"id"`
	Filename    string  `json:"filename"`
	Note        *string `json:"note"`
	Bytes       *int64  `json:"bytes"`
	ContentType string  `json:"content_type"`
	CreatedAt   *string `json:"created_at"` // RFC3339 UTC, null if unset
}
