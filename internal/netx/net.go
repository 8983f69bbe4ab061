// Package netx holds the JSON-over-HTTP helpers shared by the dashboard
// client and the development API server.
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// MaxErrorBody caps how much of an error response is read for diagnostics.
const MaxErrorBody = 64 << 10

// APIError is the error envelope the API server writes and the client reads.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   *APIError `json:"error,omitempty"`
	Message string    `json:"message,omitempty"`
}

// NewJSONRequest builds a request whose body is the JSON encoding of body.
// A nil body produces a request without one.
func NewJSONRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// DecodeResponse decodes the JSON body of resp into v and closes the body.
func DecodeResponse(resp *http.Response, v any) error {
	defer func() { _ = resp.Body.Close() }()
	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// ReadAPIError drains resp and extracts the error envelope. Bodies that are
// not JSON fall back to the trimmed text, then to the status text.
func ReadAPIError(resp *http.Response) APIError {
	defer func() { _ = resp.Body.Close() }()

	b, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBody))

	var env errorResponse
	if err := json.Unmarshal(b, &env); err == nil {
		switch {
		case env.Error != nil:
			return *env.Error
		case env.Message != "":
			return APIError{Message: env.Message}
		}
	}

	if msg := strings.TrimSpace(string(b)); msg != "" && !strings.HasPrefix(msg, "{") {
		return APIError{Message: msg}
	}
	return APIError{Message: http.StatusText(resp.StatusCode)}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError writes the error envelope.
func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, errorResponse{Error: &APIError{Code: code, Message: msg}})
}

// DecodeRequest strictly decodes a single JSON object from r's body, capped
// at maxBytes.
func DecodeRequest(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after JSON object")
	}
	return nil
}
