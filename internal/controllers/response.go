package controllers

import (
	"fmt"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

const (
	maxRequestBodySize = 1 << 20 // 1 MB
	viewerHeader       = "X-Viewer-ID"
)

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func viewerID(r *http.Request) string {
	return r.Header.Get(viewerHeader)
}

func queryFloat(q url.Values, key string) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

func queryInt(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

// queryFloats parses every key or fails on the first malformed one.
func queryFloats(q url.Values, keys ...string) ([]float64, error) {
	out := make([]float64, len(keys))
	for i, key := range keys {
		v, err := queryFloat(q, key)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
