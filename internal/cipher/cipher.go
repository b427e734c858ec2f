// Package cipher implements the nonigma substitution: characters are routed
// through the machine's wiring, perturbed by the fitted wheels, and the wheels
// advance after every character.
//
// Encoding is its own inverse: encoding the output again with the same
// starting key reproduces the input.
package cipher

import (
	"errors"
	"fmt"
	"strings"

	"nonigma/internal/machine"
	"nonigma/internal/wheel"
)

// State is the running state of one message. It must not be shared between
// messages or goroutines.
type State struct {
	wheels    [machine.Slots]wheel.Wheel
	positions [machine.Slots]int
}

// NewState validates the key and returns a fresh state starting at the key's
// positions.
func NewState(key Key) (*State, error) {
	wheels, err := resolve(key.Wheels)
	if err != nil {
		return nil, fmt.Errorf("cipher: %w", err)
	}
	return &State{
		wheels:    wheels,
		positions: key.Positions,
	}, nil
}

// Positions returns the current wheel positions.
func (s *State) Positions() [machine.Slots]int {
	return s.positions
}

func mod(a, n int) int {
	return (a%n + n) % n
}

// step moves off the terminal at (slot, pos) by the delta the slot's wheel
// currently shows at pos.
func (s *State) step(slot, pos int) int {
	size := machine.Size(slot)
	delta := s.wheels[slot].Delta(mod(pos+s.positions[slot], size))
	return mod(pos+delta, size)
}

func (s *State) advance(slot int) {
	s.positions[slot] = mod(s.positions[slot]+1, machine.Size(slot))
}

// Within one character the wheels do not move, so the next hop from a
// redirect is fixed. A chain longer than the machine must revisit a terminal.
var maxHops = machine.Terminals()

var at = machine.At

// EncodeLetter routes r through the machine and advances the wheels.
func EncodeLetter(r rune, s *State) (rune, error) {
	start, pos, ok := machine.Locate(r)
	if !ok {
		return 0, &UnsupportedCharacterError{Char: r}
	}

	slot := start
	pos = s.step(slot, pos)
	t := at(slot, pos)
	for hops := 0; t.IsRedirect(); hops++ {
		if hops == maxHops {
			return 0, fmt.Errorf("cipher: %q after %d hops: %w", r, hops, ErrRoutingCycle)
		}
		slot, pos = t.Target()
		pos = s.step(slot, pos)
		t = at(slot, pos)
	}

	end := slot
	if end == start {
		end = machine.Hub
	}
	s.advance(start)
	s.advance(end)

	return t.Rune(), nil
}

type options struct {
	strip bool
}

// Option configures EncodeMessage and Encoder.
type Option func(*options)

// WithStrip drops unsupported characters instead of failing.
func WithStrip(strip bool) Option {
	return func(o *options) {
		o.strip = strip
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// EncodeMessage encodes msg starting from key. The key itself is never
// modified. Unless WithStrip(true) is given, an unsupported character fails
// the whole message.
func EncodeMessage(msg string, key Key, opts ...Option) (string, error) {
	o := newOptions(opts)

	s, err := NewState(key)
	if err != nil {
		return "", err
	}

	out := &strings.Builder{}
	out.Grow(len(msg))

	for i, r := range msg {
		c, err := EncodeLetter(r, s)
		if err != nil {
			var uerr *UnsupportedCharacterError
			if errors.As(err, &uerr) {
				if o.strip {
					continue
				}
				uerr.Offset = i
			}
			return "", err
		}
		out.WriteRune(c)
	}
	return out.String(), nil
}
