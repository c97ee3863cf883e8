// Package httputil writes JSON responses and the shared error envelope.
package httputil

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

// MaxBodyBytes bounds request bodies decoded by DecodeJSON.
const MaxBodyBytes = 1 << 20

const internalMessage = "Internal server error"

// ErrorResponse is the wire form of a domain error.
type ErrorResponse struct {
	Code    dErrors.Code   `json:"code"`
	Message string         `json:"message"`
	TraceID string         `json:"traceId,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err as the error envelope. Errors that are not domain
// errors, and internal errors, are redacted to a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := dErrors.As(err)
	if !ok {
		de = dErrors.New(dErrors.CodeInternal, internalMessage)
	}

	resp := ErrorResponse{
		Code:    de.Code,
		Message: de.Message,
		TraceID: de.TraceID,
		Details: de.Details,
	}
	if resp.Code == dErrors.CodeInternal {
		resp.Message = internalMessage
		resp.Details = nil
	}
	if resp.TraceID == "" && r != nil {
		resp.TraceID = requestcontext.TraceID(r.Context())
	}

	WriteJSON(w, dErrors.HTTPStatus(resp.Code), resp)
}

// DecodeJSON decodes a bounded request body into dst, rejecting unknown fields
// and trailing data.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return dErrors.Wrap(err, dErrors.CodeInvalidRequest, "request body too large")
		case errors.Is(err, io.EOF):
			return dErrors.New(dErrors.CodeInvalidRequest, "request body must not be empty")
		default:
			return dErrors.Wrap(err, dErrors.CodeInvalidRequest, "invalid JSON body")
		}
	}
	if dec.More() {
		return dErrors.New(dErrors.CodeInvalidRequest, "request body must contain a single JSON value")
	}
	return nil
}
