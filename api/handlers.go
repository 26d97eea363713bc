package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/segminerals/ownerportal/internal/auth"
	"github.com/segminerals/ownerportal/internal/docs"
	"github.com/segminerals/ownerportal/internal/forecast"
	"github.com/segminerals/ownerportal/internal/ownership"
	"github.com/segminerals/ownerportal/internal/pricing"
	"github.com/segminerals/ownerportal/internal/production"
	"github.com/segminerals/ownerportal/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Request / Response types
// ════════════════════════════════════════════════════════════════════

// APIResponse is the standard JSON envelope. Code carries a stable
// machine-readable error identifier alongside the human message.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// BulkProductionRequest is the body for POST /api/v1/production/bulk.
type BulkProductionRequest struct {
	APINumbers []string `json:"api_numbers"`
}

// DeclineRequest is the body for POST /api/v1/forecast/decline.
type DeclineRequest struct {
	InitialRate float64 `json:"initial_rate"`
	DeclineRate float64 `json:"decline_rate"`
	BFactor     float64 `json:"b_factor"`
	Periods     int     `json:"periods"`
}

// MapData is parallel coordinate arrays for the map page; entries align
// positionally.
type MapData struct {
	Lat  []float64 `json:"lat"`
	Lon  []float64 `json:"lon"`
	Text []string  `json:"text"`
	Year []int     `json:"year"`
}

// StartUploadRequest is the body for POST /api/v1/files/start-upload.
type StartUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// FinalizeUploadRequest is the body for POST /api/v1/files/finalize.
type FinalizeUploadRequest struct {
	Key      string  `json:"key"`
	Filename string  `json:"filename"`
	Note     *string `json:"note"`
}

// UpdateDocumentRequest is the body for PATCH /api/v1/files/{id}.
type UpdateDocumentRequest struct {
	Note *string `json:"note"`
}

// ════════════════════════════════════════════════════════════════════
// Handlers
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": Version,
		},
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	if !s.warehouseReady(w) {
		return
	}
	wells, err := s.mapSrc.MapPoints(r.Context())
	if err != nil {
		s.warehouseError(w, err)
		return
	}

	data := MapData{
		Lat:  []float64{},
		Lon:  []float64{},
		Text: []string{},
		Year: []int{},
	}
	for _, well := range wells {
		if well.Latitude == nil || well.Longitude == nil || well.CompletionYear == nil {
			continue
		}
		data.Lat = append(data.Lat, *well.Latitude)
		data.Lon = append(data.Lon, *well.Longitude)
		data.Text = append(data.Text, well.Name)
		data.Year = append(data.Year, *well.CompletionYear)
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func (s *Server) handleWells(w http.ResponseWriter, r *http.Request) {
	if !s.warehouseReady(w) {
		return
	}
	id, _ := auth.FromContext(r.Context())

	wells, err := s.resolver.WellsForOwner(r.Context(), id.Owner)
	if err != nil {
		s.warehouseError(w, err)
		return
	}
	if wells == nil {
		wells = []ownership.WellInterest{}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: wells})
}

func (s *Server) handleEconomicsSummary(w http.ResponseWriter, r *http.Request) {
	result, ok := s.computeEconomics(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleEconomicsPV(w http.ResponseWriter, r *http.Request) {
	result, ok := s.computeEconomics(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result.Stats})
}

// computeEconomics runs the full pipeline for the authenticated owner.
// On failure it writes the error response and returns ok=false.
func (s *Server) computeEconomics(w http.ResponseWriter, r *http.Request) (*models.EconomicsResult, bool) {
	if !s.warehouseReady(w) {
		return nil, false
	}
	id, _ := auth.FromContext(r.Context())
	ctx := r.Context()

	wells, err := s.resolver.WellsForOwner(ctx, id.Owner)
	if err != nil {
		s.warehouseError(w, err)
		return nil, false
	}

	deck := s.cfg.Econ.PriceDeck
	priceRows, err := s.prices.PriceRows(ctx, models.DeckHistorical, deck)
	if err != nil {
		s.warehouseError(w, err)
		return nil, false
	}
	curve := pricing.Blend(deck, priceRows)

	result, err := s.engine.Compute(ctx, wells, curve)
	if err != nil {
		s.warehouseError(w, err)
		return nil, false
	}
	return result, true
}

func (s *Server) handleBulkProduction(w http.ResponseWriter, r *http.Request) {
	var req BulkProductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.APINumbers) == 0 {
		writeError(w, http.StatusBadRequest, "api_numbers is required")
		return
	}
	if !s.warehouseReady(w) {
		return
	}

	result, err := s.bulk.Lookup(r.Context(), req.APINumbers)
	if err != nil {
		if errors.Is(err, production.ErrTooManyWells) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.warehouseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleDecline(w http.ResponseWriter, r *http.Request) {
	var req DeclineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.InitialRate <= 0 {
		writeError(w, http.StatusBadRequest, "initial_rate must be positive")
		return
	}
	if req.Periods > 1200 {
		writeError(w, http.StatusBadRequest, "periods must be at most 1200")
		return
	}

	rates := forecast.Decline(req.InitialRate, req.DeclineRate, req.BFactor, req.Periods)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]interface{}{
		"rates": rates,
	}})
}

func (s *Server) handleOwnershipRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.warehouseReady(w) {
		return
	}
	if err := s.cache.Refresh(r.Context()); err != nil {
		s.warehouseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]interface{}{
		"refreshed": true,
	}})
}

// ─── Documents ─────────────────────────────────────────────────────

func (s *Server) handleStartUpload(w http.ResponseWriter, r *http.Request) {
	var req StartUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}
	if !s.warehouseReady(w) {
		return
	}
	id, _ := auth.FromContext(r.Context())

	ticket, err := s.docs.StartUpload(r.Context(), id.UserID, req.Filename, req.ContentType)
	if err != nil {
		s.docsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: ticket})
}

func (s *Server) handleFinalizeUpload(w http.ResponseWriter, r *http.Request) {
	var req FinalizeUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Key == "" || req.Filename == "" {
		writeError(w, http.StatusBadRequest, "key and filename are required")
		return
	}
	if !s.warehouseReady(w) {
		return
	}
	id, _ := auth.FromContext(r.Context())

	doc, err := s.docs.Finalize(r.Context(), id.UserID, req.Key, req.Filename, req.Note)
	if err != nil {
		s.docsError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: doc})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if !s.warehouseReady(w) {
		return
	}
	id, _ := auth.FromContext(r.Context())

	list, err := s.docs.List(r.Context(), id.UserID)
	if err != nil {
		s.docsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: list})
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.warehouseReady(w) {
		return
	}
	id, _ := auth.FromContext(r.Context())

	if err := s.docs.UpdateNote(r.Context(), id.UserID, chi.URLParam(r, "id"), req.Note); err != nil {
		s.docsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if !s.warehouseReady(w) {
		return
	}
	id, _ := auth.FromContext(r.Context())

	if err := s.docs.Delete(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		s.docsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true})
}

func (s *Server) handleOpenDocument(w http.ResponseWriter, r *http.Request) {
	if !s.warehouseReady(w) {
		return
	}
	id, _ := auth.FromContext(r.Context())

	url, err := s.docs.OpenURL(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.docsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]interface{}{
		"url": url,
	}})
}

// ════════════════════════════════════════════════════════════════════
// Error mapping and JSON helpers
// ════════════════════════════════════════════════════════════════════

// warehouseReady reports whether the data plane is wired; when the
// warehouse configuration was incomplete at startup every data endpoint
// answers 503 with a stable code.
func (s *Server) warehouseReady(w http.ResponseWriter) bool {
	if s.whErr != nil {
		writeErrorCode(w, http.StatusServiceUnavailable,
			"warehouse_configuration_missing", "the data warehouse is not configured")
		return false
	}
	return true
}

// warehouseError maps a data-plane failure to a response. Internals are
// logged, never returned.
func (s *Server) warehouseError(w http.ResponseWriter, err error) {
	log.Printf("warehouse request failed: %v", err)
	writeErrorCode(w, http.StatusServiceUnavailable,
		"warehouse_unavailable", "the data warehouse is unavailable")
}

func (s *Server) docsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, docs.ErrNotFound):
		writeError(w, http.StatusNotFound, "document not found")
	case errors.Is(err, docs.ErrForbidden):
		writeError(w, http.StatusForbidden, "document belongs to another user")
	default:
		log.Printf("document request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "document operation failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

func writeErrorCode(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
		Code:    code,
	})
}
