package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"cablecalc/internal/services"
	"cablecalc/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SegmentHandler struct {
	service *services.SegmentService
	logr    *zap.Logger
}

func NewSegmentHandler(svc *services.SegmentService, logr *zap.Logger) *SegmentHandler {
	return &SegmentHandler{service: svc, logr: logr}
}

// PreviewSegment recomputes a live segment without storing it. Partial
// input is fine: missing fields degrade the result instead of rejecting
// the request.
func (h *SegmentHandler) PreviewSegment(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	var req services.SegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	result, err := h.service.Preview(r.Context(), id, &req)
	if err != nil {
		h.logr.Error("preview failed", zap.Error(err), zap.String("project_id", id.String()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute segment"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AppendSegment validates strictly and stores the record with its result
// frozen at append time.
func (h *SegmentHandler) AppendSegment(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	var req services.SegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	record, err := h.service.Append(r.Context(), id, &req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": verr.Fields,
			})
			return
		}
		h.logr.Error("append failed", zap.Error(err), zap.String("project_id", id.String()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store segment"})
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// ListSegments returns a project's records in append order. The circuit
// query param filters, repeated or comma-separated.
func (h *SegmentHandler) ListSegments(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	circuits := utils.ParseQueryList(r.URL.Query(), "circuit")

	records, err := h.service.List(r.Context(), id, circuits)
	if err != nil {
		h.logr.Error("failed to list segments", zap.Error(err), zap.String("project_id", id.String()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list segments"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"segments": records,
		"count":    len(records),
	})
}

// DeleteSegment removes one record from a project
func (h *SegmentHandler) DeleteSegment(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	segID, err := uuid.Parse(chi.URLParam(r, "segmentID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid segment id"})
		return
	}

	if err := h.service.Delete(r.Context(), id, segID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "segment not found"})
			return
		}
		h.logr.Error("failed to delete segment", zap.Error(err), zap.String("segment_id", segID.String()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete segment"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OptimizeSegment scans the catalogue for the smallest compliant
// cross-section and breaker pair
func (h *SegmentHandler) OptimizeSegment(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	var req services.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	outcome, err := h.service.Optimize(r.Context(), id, &req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": verr.Fields,
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(data)
}
