package server

import (
	"errors"
	"net/http"
	"nonigma/internal/ctxlog"
	"nonigma/internal/key"
	"nonigma/internal/keyring"
	"time"
)

type keyInfo struct {
	Name     string     `json:"name"`
	Key      key.File   `json:"key"`
	Created  time.Time  `json:"created"`
	LastUsed *time.Time `json:"last_used,omitempty"`
	Uses     int        `json:"uses"`
}

func newKeyInfo(name string, e keyring.Entry) keyInfo {
	info := keyInfo{
		Name:    name,
		Key:     e.Key,
		Created: e.Created,
		Uses:    e.Uses,
	}
	if !e.LastUsed.IsZero() {
		info.LastUsed = &e.LastUsed
	}
	return info
}

func keyringError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err)
	case errors.Is(err, keyring.ErrInvalidName):
		writeError(w, r, http.StatusBadRequest, err)
	default:
		log := ctxlog.Get(r.Context())
		log.Error("keyring failure", "error", err)
		writeError(w, r, http.StatusInternalServerError, errors.New("keyring failure"))
	}
}

func listKeysHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys := []keyInfo{}
		for name, entry := range keyring.All() {
			keys = append(keys, newKeyInfo(name, entry))
		}
		writeJSON(w, r, http.StatusOK, keys)
	})
}

func getKeyHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		entry, err := keyring.Get(name)
		if err != nil {
			keyringError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, newKeyInfo(name, entry))
	})
}

func putKeyHandler(maxBytes int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		var f key.File
		if err := decodeJSON(w, r, maxBytes, &f); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		k, err := f.Key()
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}

		if err := keyring.Put(name, k, time.Now()); err != nil {
			keyringError(w, r, err)
			return
		}

		entry, err := keyring.Get(name)
		if err != nil {
			keyringError(w, r, err)
			return
		}

		log := ctxlog.Get(r.Context())
		log.Info("stored key", "name", name)

		writeJSON(w, r, http.StatusOK, newKeyInfo(name, entry))
	})
}

func deleteKeyHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if err := keyring.Delete(name); err != nil {
			keyringError(w, r, err)
			return
		}

		log := ctxlog.Get(r.Context())
		log.Info("deleted key", "name", name)

		w.WriteHeader(http.StatusNoContent)
	})
}
