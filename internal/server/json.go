package server

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"nonigma/internal/ctxlog"
	"strconv"
)

const contentTypeJSON = "application/json"

type errorResponse struct {
	Error  string `json:"error"`
	Char   string `json:"char,omitempty"`
	Offset *int   `json:"offset,omitempty"`
}

func jsonContent(v any) []byte {
	content, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("server: marshal json: %w", err))
	}
	return append(content, '\n')
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	content := jsonContent(v)

	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(status)
	if _, err := w.Write(content); err != nil {
		log := ctxlog.Get(r.Context())
		log.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

// cachedHandler serves fixed content with an ETag so clients can revalidate.
func cachedHandler(content []byte, ct string) http.Handler {
	h := md5.New()
	h.Write(content)
	etag := `"` + base64.RawURLEncoding.EncodeToString(h.Sum(nil)) + `"`

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		if ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(content); err != nil {
			log := ctxlog.Get(r.Context())
			log.Error("failed to write response", "error", err)
			return
		}
	})
}

func statusHandler(status int) http.Handler {
	content := jsonContent(errorResponse{Error: http.StatusText(status)})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.WriteHeader(status)
		if _, err := w.Write(content); err != nil {
			log := ctxlog.Get(r.Context())
			log.Error("failed to write response", "error", err)
			return
		}
	})
}
