package cipher

import (
	"errors"

	"nonigma/internal/machine"
	"nonigma/internal/wheel"
)

// Key selects a wheel for every slot and the position each wheel starts at.
// Positions are reduced modulo the slot size when used, so any integer is
// accepted.
type Key struct {
	Wheels    [machine.Slots]string
	Positions [machine.Slots]int
}

// ReferenceKey is the key the cardboard machine was checked against.
var ReferenceKey = Key{
	Wheels:    [machine.Slots]string{"lg", "dg", "bl", "pu", "re", "or", "pi", "pe", "gr"},
	Positions: [machine.Slots]int{11, 14, 12, 11, 17, 9, 9, 13, 0},
}

// ValidateKey checks that every wheel exists and fits the slot it is
// assigned to. All problems are reported, joined.
func ValidateKey(wheels [machine.Slots]string) error {
	_, err := resolve(wheels)
	return err
}

func resolve(names [machine.Slots]string) ([machine.Slots]wheel.Wheel, error) {
	var (
		wheels [machine.Slots]wheel.Wheel
		errs   []error
	)
	for slot, name := range names {
		w, ok := wheel.Get(name)
		if !ok {
			errs = append(errs, &UnknownWheelError{Slot: slot, Wheel: name})
			continue
		}
		if size := machine.Size(slot); w.Len() != size {
			errs = append(errs, &LengthMismatchError{Slot: slot, Wheel: name, Expected: size, Actual: w.Len()})
			continue
		}
		wheels[slot] = w
	}
	return wheels, errors.Join(errs...)
}
