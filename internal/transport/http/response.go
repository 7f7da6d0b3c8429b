package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"tryout-service/internal/domain"
)

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorPayload struct {
	Message string              `json:"message"`
	Index   *int                `json:"index,omitempty"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataEnvelope{Data: data})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Message: msg})
}

// writeError maps the domain error taxonomy onto HTTP statuses. Upstream
// failures are logged and reported without detail.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		payload := errorPayload{Message: ve.Error(), Fields: ve.Fields}
		if ve.Index >= 0 {
			idx := ve.Index
			payload.Index = &idx
		}
		writeJSON(w, http.StatusBadRequest, payload)
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	default:
		log.Error("request failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &domain.ValidationError{Index: -1, Fields: []domain.FieldError{{Field: "body", Reason: "is not valid JSON"}}}
	}
	return nil
}
