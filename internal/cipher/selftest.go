package cipher

import (
	"errors"
	"fmt"

	"nonigma/internal/machine"
)

type fixture struct {
	key      Key
	in, want string
}

func withPositions(key Key, positions ...int) Key {
	copy(key.Positions[:], positions)
	return key
}

// fixtures are readings taken from the cardboard machine.
var fixtures = func() []fixture {
	wrapped := withPositions(ReferenceKey, 11, 14, 12, 11, 17, 9, 9, 13, 18)
	var out []fixture
	for _, f := range [][2]string{
		{"i", "d"}, {"g", "r"}, {"a", "e"}, {"m", "q"}, {"z", "t"},
		{"D", "F"}, {"O", "K"}, {"Z", "V"}, {"P", "R"}, {"!", "/"},
		{"x", "f"}, {"2", "4"}, {"3", "🙂"}, {"9", "h"}, {"A", "N"},
		{"N", "A"}, {"1", "k"},
		{"HelloWorld!", "BaMpk.-B1Ra"},
		{"BaMpk.-B1Ra", "HelloWorld!"},
	} {
		out = append(out, fixture{wrapped, f[0], f[1]})
	}
	return append(out, fixture{ReferenceKey, "HelloWorld!", "BaMpk.-B1Ra"})
}()

// SelfTest checks the wiring and the known machine readings.
func SelfTest() error {
	errs := []error{machine.Validate()}
	for _, f := range fixtures {
		have, err := EncodeMessage(f.in, f.key)
		if err != nil {
			errs = append(errs, fmt.Errorf("%q: %w", f.in, err))
			continue
		}
		if have != f.want {
			errs = append(errs, fmt.Errorf("%q with positions %v: expected %q, got %q", f.in, f.key.Positions, f.want, have))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("cipher: self test: %w", err)
	}
	return nil
}
