package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/formbff/internal/domain/model"
)

// timestampLayout renders UTC instants with millisecond precision, the shape
// browser clients get from Date.prototype.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// envelope is the uniform response body of every API endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	Error   any    `json:"error,omitempty"`
}

// writeSuccess writes a successful envelope. A nil data is omitted.
func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

// writeError writes a failed envelope with no error detail.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// writeFailure writes a failed envelope carrying detail in the error field.
func writeFailure(w http.ResponseWriter, status int, message string, detail any) {
	writeJSON(w, status, envelope{Success: false, Message: message, Error: detail})
}

// RecordResponse is the JSON representation of a record.
type RecordResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// RecordRequest is the JSON body for the create and update endpoints.
type RecordRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,emailpattern,max=255"`
}

// upstreamErrorDetail is the error field of a relayed GitHub failure.
type upstreamErrorDetail struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toRecordResponse converts a domain Record to its JSON response representation.
func toRecordResponse(rec model.Record) RecordResponse {
	return RecordResponse{
		ID:        rec.ID,
		Name:      rec.Name,
		Email:     rec.Email,
		CreatedAt: rec.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt: rec.UpdatedAt.UTC().Format(timestampLayout),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
