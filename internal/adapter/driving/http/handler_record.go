package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ListRecords returns every record, most recently created first.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := h.records.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list records", "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to fetch records", err.Error())
		return
	}

	resp := make([]RecordResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, toRecordResponse(rec))
	}

	writeSuccess(w, http.StatusOK, resp, "fetched records")
}

// GetRecord returns a single record by ID.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	rec, err := h.records.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get record", "id", id, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to fetch record", err.Error())
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	writeSuccess(w, http.StatusOK, toRecordResponse(*rec), "fetched record")
}

// CreateRecord validates the body and persists a new record.
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRecordRequest(w, r)
	if !ok {
		return
	}

	rec, err := h.records.Create(r.Context(), req.Name, req.Email)
	if err != nil {
		h.logger.Error("failed to create record", "email", req.Email, "error", err)
		writeFailure(w, http.StatusInternalServerError, "create failed", err.Error())
		return
	}

	writeSuccess(w, http.StatusCreated, toRecordResponse(rec), "created")
}

// UpdateRecord validates the body and overwrites an existing record.
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	req, ok := decodeRecordRequest(w, r)
	if !ok {
		return
	}

	rec, err := h.records.Update(r.Context(), id, req.Name, req.Email)
	if err != nil {
		h.logger.Error("failed to update record", "id", id, "error", err)
		writeFailure(w, http.StatusInternalServerError, "update failed", err.Error())
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	writeSuccess(w, http.StatusOK, toRecordResponse(*rec), "updated")
}

// DeleteRecord removes a record by ID.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	deleted, err := h.records.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete record", "id", id, "error", err)
		writeFailure(w, http.StatusInternalServerError, "delete failed", err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	writeSuccess(w, http.StatusOK, nil, "deleted")
}

// parseID extracts the {id} path parameter. On failure it writes a 400 and
// returns false.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id parameter")
		return 0, false
	}
	return id, true
}

// decodeRecordRequest reads, normalizes, and validates a record body. On
// failure it writes a 400 and returns false. An empty body decodes to an
// empty request so it fails the required check rather than the JSON check.
func decodeRecordRequest(w http.ResponseWriter, r *http.Request) (RecordRequest, bool) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return RecordRequest{}, false
	}

	req.normalize()
	if msg := validateRecordRequest(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return RecordRequest{}, false
	}

	return req, true
}
