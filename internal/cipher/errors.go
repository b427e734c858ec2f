package cipher

import (
	"errors"
	"fmt"
	"strings"

	"nonigma/internal/wheel"
)

var (
	ErrInvalidKey           = errors.New("invalid key")
	ErrUnsupportedCharacter = errors.New("unsupported character")
	ErrRoutingCycle         = errors.New("routing cycle detected")
)

// UnknownWheelError reports a wheel name that is not part of the wheel set.
type UnknownWheelError struct {
	Slot  int
	Wheel string
}

func (e *UnknownWheelError) Error() string {
	return fmt.Sprintf("wheel %q in slot %d not recognised (known wheels: %s)", e.Wheel, e.Slot, strings.Join(wheel.Names(), ", "))
}

func (e *UnknownWheelError) Is(target error) bool {
	return target == ErrInvalidKey
}

// LengthMismatchError reports a wheel fitted to a slot of a different size.
type LengthMismatchError struct {
	Slot     int
	Wheel    string
	Expected int
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("wheel %q does not fit in slot %d: slot has %d positions, wheel has %d", e.Wheel, e.Slot, e.Expected, e.Actual)
}

func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrInvalidKey
}

// UnsupportedCharacterError reports a character the machine does not hold.
// Offset is the byte offset of the character in the input.
type UnsupportedCharacterError struct {
	Char   rune
	Offset int
}

func (e *UnsupportedCharacterError) Error() string {
	return fmt.Sprintf("unsupported character %q at offset %d", e.Char, e.Offset)
}

func (e *UnsupportedCharacterError) Is(target error) bool {
	return target == ErrUnsupportedCharacter
}
