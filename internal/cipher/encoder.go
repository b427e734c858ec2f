package cipher

import (
	"io"
	"unicode/utf8"

	"nonigma/internal/machine"
)

// Encoder encodes UTF-8 text written to it and writes the result to an
// underlying writer. Runes split across writes are reassembled.
//
// In strict mode the first unsupported character fails the Write; output
// for characters before it has already been passed on, so callers wanting
// all-or-nothing output should buffer the destination.
type Encoder struct {
	w       io.Writer
	s       *State
	o       options
	pending []byte
	buf     []byte
	offset  int
	err     error
}

// NewEncoder returns an Encoder writing to w, starting from key.
func NewEncoder(w io.Writer, key Key, opts ...Option) (*Encoder, error) {
	s, err := NewState(key)
	if err != nil {
		return nil, err
	}
	return &Encoder{
		w: w,
		s: s,
		o: newOptions(opts),
	}, nil
}

// Write encodes every complete rune in p. It reports len(p) on success even
// if a trailing partial rune is held back for the next call.
func (e *Encoder) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}

	e.pending = append(e.pending, p...)
	e.buf = e.buf[:0]

	data := e.pending
	for len(data) > 0 && utf8.FullRune(data) {
		r, size := utf8.DecodeRune(data)
		if err := e.encode(r); err != nil {
			e.err = err
			break
		}
		data = data[size:]
		e.offset += size
	}
	e.pending = append(e.pending[:0], data...)

	if len(e.buf) > 0 {
		if _, err := e.w.Write(e.buf); err != nil && e.err == nil {
			e.err = err
		}
	}
	if e.err != nil {
		return 0, e.err
	}
	return len(p), nil
}

func (e *Encoder) encode(r rune) error {
	c, err := EncodeLetter(r, e.s)
	if err != nil {
		if uerr, ok := err.(*UnsupportedCharacterError); ok {
			if e.o.strip {
				return nil
			}
			uerr.Offset = e.offset
		}
		return err
	}
	e.buf = utf8.AppendRune(e.buf, c)
	return nil
}

// Close flushes the encoder. A dangling partial rune is treated as an
// unsupported character.
func (e *Encoder) Close() error {
	if e.err != nil {
		return e.err
	}
	if len(e.pending) == 0 {
		return nil
	}
	e.pending = e.pending[:0]
	if e.o.strip {
		return nil
	}
	e.err = &UnsupportedCharacterError{Char: utf8.RuneError, Offset: e.offset}
	return e.err
}

// Positions returns the wheel positions after everything written so far.
func (e *Encoder) Positions() [machine.Slots]int {
	return e.s.Positions()
}
