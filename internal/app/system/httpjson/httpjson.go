// internal/app/system/httpjson/httpjson.go
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/alumlink/alumlink/internal/app/system/apperr"
	"go.uber.org/zap"
)

// maxBodyBytes bounds JSON request bodies. The portal has no uploads on the
// JSON API, so 1 MiB is plenty.
const maxBodyBytes = 1 << 20

// Decode reads a JSON request body into dst. It returns a Validation error
// for empty or malformed bodies.
func Decode(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.Validation, "request body is required")
		}
		return apperr.Wrap(apperr.Validation, "malformed request body", err)
	}
	return nil
}

// Write sends v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK sends a success envelope: {"success": true, ...payload}. The payload map
// must not contain a "success" key of its own.
func OK(w http.ResponseWriter, payload map[string]any) {
	WriteSuccess(w, http.StatusOK, payload)
}

// Created sends a 201 success envelope.
func Created(w http.ResponseWriter, payload map[string]any) {
	WriteSuccess(w, http.StatusCreated, payload)
}

// WriteSuccess sends the success envelope with an explicit status.
func WriteSuccess(w http.ResponseWriter, status int, payload map[string]any) {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	Write(w, status, body)
}

// Error maps err to its status code and sends {"error": message}. Internal
// and upstream causes are logged and replaced with a generic message so stack
// detail never reaches the client.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	ae := apperr.FromCause(err, "internal error")
	msg := ae.Message
	switch ae.Kind {
	case apperr.Internal:
		if log != nil {
			log.Error("request failed", zap.Error(err))
		}
		msg = "something went wrong"
	case apperr.Upstream:
		if log != nil {
			log.Error("upstream dependency failed", zap.Error(err))
		}
	}
	Write(w, ae.Status(), map[string]any{"error": msg})
}
