// Package api exposes the chunk operations over HTTP. Bodies carry the
// PNG as base64 so the service stays a plain JSON API; every response
// is tagged with a request ID.
package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pngstash/internal/pngstash/chunk"
	"pngstash/internal/pngstash/ops"
	"pngstash/internal/pngstash/png"
)

// Server holds the HTTP handlers for the chunk operations.
type Server struct{}

// New creates a new API server.
func New() *Server {
	return &Server{}
}

// Routes registers all API routes on a fresh router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/encode", s.Encode)
	r.Post("/decode", s.Decode)
	r.Post("/remove", s.Remove)
	r.Post("/inspect", s.Inspect)
	return r
}

// EncodeRequest is the request body for embedding a message.
type EncodeRequest struct {
	PNG       string `json:"png"` // base64
	ChunkType string `json:"chunk_type"`
	Message   string `json:"message"`
}

// EncodeResponse carries the rewritten PNG.
type EncodeResponse struct {
	RequestID string `json:"request_id"`
	PNG       string `json:"png"` // base64
	ChunkType string `json:"chunk_type"`
}

// Encode handles POST /api/encode.
func (s *Server) Encode(w http.ResponseWriter, r *http.Request) {
	var req EncodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, ok := parseBody(w, req.PNG)
	if !ok {
		return
	}

	c, err := ops.Encode(p, req.ChunkType, req.Message)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, EncodeResponse{
		RequestID: uuid.NewString(),
		PNG:       base64.StdEncoding.EncodeToString(p.Bytes()),
		ChunkType: c.Type().String(),
	})
}

// DecodeRequest is the request body for extracting a message.
type DecodeRequest struct {
	PNG       string `json:"png"` // base64
	ChunkType string `json:"chunk_type"`
}

// DecodeResponse carries the recovered message.
type DecodeResponse struct {
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
}

// Decode handles POST /api/decode.
func (s *Server) Decode(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, ok := parseBody(w, req.PNG)
	if !ok {
		return
	}

	message, err := ops.Decode(p, req.ChunkType)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, DecodeResponse{
		RequestID: uuid.NewString(),
		Message:   message,
	})
}

// RemoveRequest is the request body for deleting a chunk.
type RemoveRequest struct {
	PNG       string `json:"png"` // base64
	ChunkType string `json:"chunk_type"`
}

// RemoveResponse carries the rewritten PNG and the removed chunk.
type RemoveResponse struct {
	RequestID string      `json:"request_id"`
	PNG       string      `json:"png"` // base64
	Removed   ops.Summary `json:"removed"`
}

// Remove handles POST /api/remove.
func (s *Server) Remove(w http.ResponseWriter, r *http.Request) {
	var req RemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, ok := parseBody(w, req.PNG)
	if !ok {
		return
	}

	c, err := ops.Remove(p, req.ChunkType)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	removed := ops.Summary{
		Type:   c.Type().String(),
		Length: c.Length(),
		Crc:    c.Crc(),
	}
	if text, err := c.DataAsString(); err == nil {
		removed.Text = text
	} else {
		removed.Binary = true
	}

	writeJSON(w, RemoveResponse{
		RequestID: uuid.NewString(),
		PNG:       base64.StdEncoding.EncodeToString(p.Bytes()),
		Removed:   removed,
	})
}

// InspectRequest is the request body for enumerating chunks.
type InspectRequest struct {
	PNG string `json:"png"` // base64
}

// InspectResponse lists every chunk in file order.
type InspectResponse struct {
	RequestID string        `json:"request_id"`
	Chunks    []ops.Summary `json:"chunks"`
	Count     int           `json:"count"`
}

// Inspect handles POST /api/inspect.
func (s *Server) Inspect(w http.ResponseWriter, r *http.Request) {
	var req InspectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, ok := parseBody(w, req.PNG)
	if !ok {
		return
	}

	summaries := ops.Inspect(p)
	writeJSON(w, InspectResponse{
		RequestID: uuid.NewString(),
		Chunks:    summaries,
		Count:     len(summaries),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// parseBody decodes and parses the base64 PNG payload, writing the
// error response itself when something is wrong.
func parseBody(w http.ResponseWriter, encoded string) (*png.PNG, bool) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		http.Error(w, "png must be base64: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	p, err := png.Parse(raw)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return nil, false
	}
	return p, true
}

// statusFor maps each error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, png.ErrChunkNotFound):
		return http.StatusNotFound
	case errors.Is(err, chunk.ErrNotUTF8):
		return http.StatusUnprocessableEntity
	case errors.Is(err, png.ErrInvalidSignature),
		errors.Is(err, png.ErrTrailingBytes),
		errors.Is(err, chunk.ErrTruncated),
		errors.Is(err, chunk.ErrChecksumMismatch),
		errors.Is(err, chunk.ErrInvalidChunkType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
