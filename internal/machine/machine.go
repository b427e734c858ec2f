// Package machine holds the fixed wiring of the nonigma machine: nine slots of
// terminals, each either an output character or a redirect to another slot.
package machine

import (
	"errors"
	"fmt"
)

const (
	// Slots is the number of slots in the machine.
	Slots = 9
	// Hub is the only 24-entry slot; most redirects pass through it.
	Hub = 4
)

// Terminal is one entry of a slot. A leaf terminal emits a character,
// a redirect terminal points at another (slot, position).
type Terminal struct {
	leaf rune
	slot int8
	pos  int8
}

func l(r rune) Terminal {
	return Terminal{leaf: r}
}

func r(slot, pos int) Terminal {
	return Terminal{slot: int8(slot), pos: int8(pos)}
}

// IsRedirect reports whether t points at another terminal.
func (t Terminal) IsRedirect() bool {
	return t.leaf == 0
}

// Rune returns the character emitted by a leaf terminal.
func (t Terminal) Rune() rune {
	if t.IsRedirect() {
		panic("machine: Rune called on redirect terminal")
	}
	return t.leaf
}

// Target returns the (slot, position) a redirect terminal points at.
func (t Terminal) Target() (slot, pos int) {
	if !t.IsRedirect() {
		panic("machine: Target called on leaf terminal")
	}
	return int(t.slot), int(t.pos)
}

func (t Terminal) String() string {
	if t.IsRedirect() {
		return fmt.Sprintf("(%d, %d)", t.slot, t.pos)
	}
	return fmt.Sprintf("%q", t.leaf)
}

var slots = [Slots][]Terminal{
	{r(2, 6), r(5, 4), r(4, 0), r(4, 22), r(4, 21), r(7, 14), r(6, 17), r(3, 15), l('a'), l('b'), l('c'), l('d'), l('e'), l('f'), l('g'), l('h'), l('i'), r(1, 4)},
	{r(4, 2), r(4, 1), r(6, 0), r(3, 16), r(0, 17), l('j'), l('k'), l('l'), l('m'), l('n'), l('o'), l('p'), l('q'), l('r'), r(2, 5), r(5, 5), r(8, 14), r(4, 3)},
	{r(7, 3), r(4, 7), r(4, 5), r(4, 6), r(3, 17), r(1, 14), r(0, 0), l('s'), l('t'), l('u'), l('v'), l('w'), l('x'), l('y'), l('z'), l('0'), r(8, 0), r(5, 7)},
	{r(4, 23), r(4, 20), r(8, 12), r(4, 19), r(7, 16), r(6, 1), l('1'), l('2'), l('3'), l('4'), l('5'), l('6'), l('7'), l('8'), l('9'), r(0, 7), r(1, 3), r(2, 4)},
	{r(0, 2), r(1, 1), r(1, 0), r(1, 17), r(5, 3), r(2, 2), r(2, 3), r(2, 1), r(5, 2), r(8, 16), r(5, 1), r(8, 13), r(8, 15), r(7, 1), r(7, 0), r(7, 17), r(6, 6), r(6, 3), r(6, 2), r(3, 3), r(3, 1), r(0, 4), r(0, 3), r(3, 0)},
	{r(7, 2), r(4, 10), r(4, 8), r(4, 4), r(0, 1), r(1, 15), r(8, 17), r(2, 17), l('A'), l('B'), l('C'), l('D'), l('E'), l('F'), l('G'), l('H'), l('I'), r(6, 4)},
	{r(1, 2), r(3, 5), r(4, 18), r(4, 17), r(5, 17), r(7, 15), r(4, 16), r(8, 10), l('R'), l('Q'), l('P'), l('O'), l('N'), l('M'), l('L'), l('K'), l('J'), r(0, 6)},
	{r(4, 14), r(4, 13), r(5, 0), r(2, 0), r(8, 11), l('.'), l('Z'), l('Y'), l('X'), l('W'), l('V'), l('U'), l('T'), l('S'), r(0, 5), r(6, 5), r(3, 4), r(4, 15)},
	{r(2, 16), l('/'), l('🙁'), l('🙂'), l('-'), l('•'), l('?'), l('\''), l(','), l('!'), r(6, 7), r(7, 4), r(3, 2), r(4, 11), r(1, 16), r(4, 12), r(4, 9), r(5, 6)},
}

type location struct {
	slot, pos int
}

// index maps every leaf rune to its location. Slots are scanned in order and
// later entries overwrite earlier ones, so a rune present in two slots
// resolves to the last one.
var index = func() map[rune]location {
	m := make(map[rune]location)
	for s, slot := range slots {
		for p, t := range slot {
			if !t.IsRedirect() {
				m[t.leaf] = location{s, p}
			}
		}
	}
	return m
}()

// Size returns the number of terminals in the slot.
func Size(slot int) int {
	return len(slots[slot])
}

// Sizes returns the size of every slot, in slot order.
func Sizes() [Slots]int {
	var sizes [Slots]int
	for i := range slots {
		sizes[i] = len(slots[i])
	}
	return sizes
}

// Terminals returns the total number of terminals across all slots.
func Terminals() int {
	n := 0
	for i := range slots {
		n += len(slots[i])
	}
	return n
}

// At returns the terminal at the given slot and position.
func At(slot, pos int) Terminal {
	return slots[slot][pos]
}

// Locate returns where the machine holds r.
func Locate(r rune) (slot, pos int, ok bool) {
	loc, ok := index[r]
	return loc.slot, loc.pos, ok
}

// Alphabet returns every character the machine can emit, in slot order.
func Alphabet() []rune {
	var out []rune
	for _, slot := range slots {
		for _, t := range slot {
			if !t.IsRedirect() {
				out = append(out, t.leaf)
			}
		}
	}
	return out
}

// Validate checks the wiring: every redirect must land inside the machine
// and no character may appear twice.
func Validate() error {
	var errs []error
	seen := make(map[rune]location)
	for s, slot := range slots {
		for p, t := range slot {
			if !t.IsRedirect() {
				if prev, dup := seen[t.leaf]; dup {
					errs = append(errs, fmt.Errorf("%q at (%d, %d) already at (%d, %d)", t.leaf, s, p, prev.slot, prev.pos))
				}
				seen[t.leaf] = location{s, p}
				continue
			}
			ts, tp := t.Target()
			if ts < 0 || ts >= Slots || tp < 0 || tp >= len(slots[ts]) {
				errs = append(errs, fmt.Errorf("redirect at (%d, %d) to %v is out of bounds", s, p, t))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("machine: invalid wiring: %w", errors.Join(errs...))
	}
	return nil
}
