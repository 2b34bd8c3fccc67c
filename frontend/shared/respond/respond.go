// Package respond writes JSON responses and maps domain errors to HTTP
// status codes.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stockreceipter/infrastructure/receipts"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
}

// JSON writes data wrapped in a success envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, envelope{Success: true, StatusCode: status, Data: data})
}

// Error maps err to a status code and writes the error envelope. Unmapped
// errors are logged and reported as 500 without their message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err))
		msg = http.StatusText(status)
	}
	write(w, status, envelope{StatusCode: status, Error: msg})
}

// Fail writes an error envelope with an explicit status.
func Fail(w http.ResponseWriter, status int, msg string) {
	write(w, status, envelope{StatusCode: status, Error: msg})
}

func StatusFor(err error) int {
	var verr *receipts.ValidationError
	switch {
	case errors.Is(err, receipts.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &verr),
		errors.Is(err, receipts.ErrNoItems),
		errors.Is(err, receipts.ErrInvalidTransition),
		errors.Is(err, receipts.ErrBalanceOnly),
		errors.Is(err, receipts.ErrTerminalStatus):
		return http.StatusUnprocessableEntity
	case errors.Is(err, receipts.ErrScanInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Decode reads a JSON body into v. Malformed bodies are validation errors.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &receipts.ValidationError{Err: fmt.Errorf("invalid request body: %w", err)}
	}
	return nil
}

// ParseID reads a UUID route parameter.
func ParseID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, &receipts.ValidationError{Err: fmt.Errorf("invalid %s", name)}
	}
	return id, nil
}

// ParseDate reads an optional YYYY-MM-DD (or RFC 3339) query value.
func ParseDate(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, &receipts.ValidationError{Err: fmt.Errorf("invalid %s %q", name, v)}
}
