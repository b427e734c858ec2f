package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"nonigma/internal/cipher"
	"nonigma/internal/ctxlog"
	"nonigma/internal/key"
	"nonigma/internal/keyring"
	"nonigma/internal/machine"
	"nonigma/internal/metrics"
	"nonigma/internal/wheel"
	"time"
	"unicode/utf8"
)

type encodeRequest struct {
	Wheels    []string `json:"wheels"`
	Positions []int    `json:"positions"`
	Key       string   `json:"key"`
	Message   string   `json:"message"`
	Strip     bool     `json:"strip"`
}

type encodeResponse struct {
	Output string `json:"output"`
}

var errKeyringDisabled = errors.New("named keys are not enabled")

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func (req encodeRequest) key(now time.Time) (cipher.Key, error) {
	if req.Key != "" {
		if req.Wheels != nil || req.Positions != nil {
			return cipher.Key{}, errors.New("give either a key name or wheels and positions, not both")
		}
		if !keyring.Opened() {
			return cipher.Key{}, errKeyringDisabled
		}
		return keyring.Lookup(req.Key, now)
	}
	return key.File{Wheels: req.Wheels, Positions: req.Positions}.Key()
}

func encodeHandler(maxBytes int64, collector *metrics.Collector) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := ctxlog.Get(r.Context())
		start := time.Now()

		var req encodeRequest
		if err := decodeJSON(w, r, maxBytes, &req); err != nil {
			var mberr *http.MaxBytesError
			if errors.As(err, &mberr) {
				writeError(w, r, http.StatusRequestEntityTooLarge, err)
				return
			}
			writeError(w, r, http.StatusBadRequest, err)
			return
		}

		k, err := req.key(start)
		if err != nil {
			collector.Observe(start, 0, 0, err)
			switch {
			case errors.Is(err, keyring.ErrNotFound), errors.Is(err, keyring.ErrInvalidName):
				writeError(w, r, http.StatusNotFound, err)
			default:
				writeError(w, r, http.StatusBadRequest, err)
			}
			return
		}

		out, err := cipher.EncodeMessage(req.Message, k, cipher.WithStrip(req.Strip))
		collector.Observe(start, utf8.RuneCountInString(req.Message), utf8.RuneCountInString(out), err)

		var uerr *cipher.UnsupportedCharacterError
		switch {
		case err == nil:
			writeJSON(w, r, http.StatusOK, encodeResponse{Output: out})

		case errors.As(err, &uerr):
			writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{
				Error:  cipher.ErrUnsupportedCharacter.Error(),
				Char:   string(uerr.Char),
				Offset: &uerr.Offset,
			})

		case errors.Is(err, cipher.ErrInvalidKey):
			writeError(w, r, http.StatusBadRequest, err)

		default:
			log.Error("failed to encode message", "error", err)
			writeError(w, r, http.StatusInternalServerError, errors.New("failed to encode message"))
		}
	})
}

type wheelInfo struct {
	Name   string `json:"name"`
	Colour string `json:"colour"`
	Deltas []int  `json:"deltas"`
}

func wheelsContent() []byte {
	var wheels []wheelInfo
	for _, w := range wheel.All() {
		wheels = append(wheels, wheelInfo{
			Name:   w.Name,
			Colour: w.Colour,
			Deltas: w.Deltas(),
		})
	}
	return jsonContent(wheels)
}

type terminalInfo struct {
	Char string `json:"char,omitempty"`
	Slot *int   `json:"slot,omitempty"`
	Pos  *int   `json:"pos,omitempty"`
}

type machineInfo struct {
	Hub      int              `json:"hub"`
	Alphabet string           `json:"alphabet"`
	Slots    [][]terminalInfo `json:"slots"`
}

func machineContent() []byte {
	info := machineInfo{
		Hub:      machine.Hub,
		Alphabet: string(machine.Alphabet()),
	}
	for s := range machine.Slots {
		slot := make([]terminalInfo, machine.Size(s))
		for p := range slot {
			t := machine.At(s, p)
			if t.IsRedirect() {
				ts, tp := t.Target()
				slot[p] = terminalInfo{Slot: &ts, Pos: &tp}
			} else {
				slot[p] = terminalInfo{Char: string(t.Rune())}
			}
		}
		info.Slots = append(info.Slots, slot)
	}
	return jsonContent(info)
}
