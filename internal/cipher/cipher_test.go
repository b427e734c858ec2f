package cipher

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"nonigma/internal/machine"
	"nonigma/internal/wheel"
)

func TestVectors(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"i", "d"},
		{"g", "r"},
		{"a", "e"},
		{"z", "t"},
		{"D", "F"},
		{"!", "/"},
		{"3", "🙂"},
		{"A", "N"},
		{"N", "A"},
		{"HelloWorld!", "BaMpk.-B1Ra"},
		{"BaMpk.-B1Ra", "HelloWorld!"},
	} {
		t.Run(tc.in, func(t *testing.T) {
			have, err := EncodeMessage(tc.in, ReferenceKey)
			if err != nil {
				t.Fatal(err)
			}
			if want := tc.want; have != want {
				t.Fatalf("Encoded %q to %q, want %q", tc.in, have, want)
			}
		})
	}
}

func TestOtherKey(t *testing.T) {
	key := Key{
		Wheels:    [machine.Slots]string{"pe", "gr", "lg", "dg", "re", "bl", "pu", "or", "pi"},
		Positions: [machine.Slots]int{0, 1, 2, 3, 4, 5, 6, 7, 8},
	}

	have, err := EncodeMessage("Thequickbrownfoxjumpsoverthelazydog!", key)
	if err != nil {
		t.Fatal(err)
	}
	if want := "Xc6jySunYukmZ9OH/zr,NwtikxdoJmVjcRi'"; have != want {
		t.Fatalf("Encoded %q, want %q", have, want)
	}

	have, err = EncodeMessage("Meet me at 10, don't be late?", key, WithStrip(true))
	if err != nil {
		t.Fatal(err)
	}
	if want := "🙂afVK8gxVgJcs-x?LiXiy4-"; have != want {
		t.Fatalf("Encoded %q, want %q", have, want)
	}
}

func TestSelfTest(t *testing.T) {
	if err := SelfTest(); err != nil {
		t.Fatal(err)
	}
}

func randKey() Key {
	var eighteen []string
	for _, w := range wheel.All() {
		if w.Len() == 18 {
			eighteen = append(eighteen, w.Name)
		}
	}

	var key Key
	for slot := range machine.Slots {
		key.Wheels[slot] = eighteen[rand.IntN(len(eighteen))]
		key.Positions[slot] = rand.IntN(3 * machine.Size(slot))
	}
	key.Wheels[machine.Hub] = "re"
	return key
}

func randMessage(l int) string {
	alphabet := machine.Alphabet()
	s := &strings.Builder{}
	for range l {
		s.WriteRune(alphabet[rand.IntN(len(alphabet))])
	}
	return s.String()
}

func TestRoundTrip(t *testing.T) {
	for range 200 {
		key := randKey()
		msg := randMessage(1 + rand.IntN(80))

		t.Run(fmt.Sprintf("%v/%v/%s", key.Wheels, key.Positions, msg), func(t *testing.T) {
			enc, err := EncodeMessage(msg, key)
			if err != nil {
				t.Fatal(err)
			}
			dec, err := EncodeMessage(enc, key)
			if err != nil {
				t.Fatal(err)
			}
			if have, want := dec, msg; have != want {
				t.Fatalf("Decoded %q != %q", have, want)
			}
		})
	}
}

func TestPositionEquivalence(t *testing.T) {
	msg := randMessage(60)
	key := randKey()
	want, err := EncodeMessage(msg, key)
	if err != nil {
		t.Fatal(err)
	}

	for slot := range machine.Slots {
		for _, shift := range []int{machine.Size(slot), -machine.Size(slot), 5 * machine.Size(slot)} {
			shifted := key
			shifted.Positions[slot] += shift

			have, err := EncodeMessage(msg, shifted)
			if err != nil {
				t.Fatal(err)
			}
			if have != want {
				t.Fatalf("Slot %d shifted by %d: %q != %q", slot, shift, have, want)
			}
		}
	}
}

func TestStepping(t *testing.T) {
	for _, tc := range []struct {
		in   rune
		want [machine.Slots]int
	}{
		// starts and ends in slot 0, so the hub advances
		{'i', [machine.Slots]int{12, 14, 12, 11, 18, 9, 9, 13, 0}},
		{'A', [machine.Slots]int{11, 14, 12, 11, 17, 10, 10, 13, 0}},
		{'3', [machine.Slots]int{11, 14, 12, 12, 17, 9, 9, 13, 1}},
		{'!', [machine.Slots]int{11, 14, 12, 11, 18, 9, 9, 13, 1}},
	} {
		t.Run(string(tc.in), func(t *testing.T) {
			s, err := NewState(ReferenceKey)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := EncodeLetter(tc.in, s); err != nil {
				t.Fatal(err)
			}
			if have, want := s.Positions(), tc.want; have != want {
				t.Fatalf("Positions %v, want %v", have, want)
			}
		})
	}
}

func TestSteppingCoverage(t *testing.T) {
	key := randKey()
	for slot := range machine.Slots {
		key.Positions[slot] %= machine.Size(slot)
	}
	s, err := NewState(key)
	if err != nil {
		t.Fatal(err)
	}

	for _, r := range randMessage(500) {
		before := s.Positions()
		start, _, _ := machine.Locate(r)

		out, err := EncodeLetter(r, s)
		if err != nil {
			t.Fatal(err)
		}
		end, _, _ := machine.Locate(out)
		if end == start {
			end = machine.Hub
		}

		after := s.Positions()
		for slot := range machine.Slots {
			want := before[slot]
			if slot == start || slot == end {
				want = (want + 1) % machine.Size(slot)
			}
			if have := after[slot]; have != want {
				t.Fatalf("%q -> %q: slot %d moved %d -> %d, want %d", r, out, slot, before[slot], have, want)
			}
		}
	}
}

func TestValidation(t *testing.T) {
	key := ReferenceKey
	key.Wheels[machine.Hub] = "gr"

	_, err := EncodeMessage("a", key)
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Expected invalid key, got %v", err)
	}

	var lerr *LengthMismatchError
	if !errors.As(err, &lerr) {
		t.Fatalf("Expected length mismatch, got %v", err)
	}
	if have, want := *lerr, (LengthMismatchError{Slot: 4, Wheel: "gr", Expected: 24, Actual: 18}); have != want {
		t.Fatalf("Mismatch %+v, want %+v", have, want)
	}

	key = ReferenceKey
	key.Wheels[0] = "re"
	if err := ValidateKey(key.Wheels); !errors.As(err, &lerr) || lerr.Slot != 0 || lerr.Expected != 18 || lerr.Actual != 24 {
		t.Fatalf("Expected slot 0 mismatch, got %v", err)
	}

	key = ReferenceKey
	key.Wheels[7] = "zz"
	var uerr *UnknownWheelError
	if err := ValidateKey(key.Wheels); !errors.As(err, &uerr) || uerr.Slot != 7 {
		t.Fatalf("Expected unknown wheel in slot 7, got %v", err)
	}
	if have, want := uerr.Error(), `wheel "zz" in slot 7 not recognised (known wheels: lg, dg, bl, pu, re, or, pi, pe, gr)`; have != want {
		t.Fatalf("Error %q, want %q", have, want)
	}

	if err := ValidateKey(ReferenceKey.Wheels); err != nil {
		t.Fatal(err)
	}
}

func TestValidationBeforeInput(t *testing.T) {
	key := ReferenceKey
	key.Wheels[3] = "re"

	out, err := EncodeMessage("a b", key)
	if !errors.Is(err, ErrInvalidKey) || errors.Is(err, ErrUnsupportedCharacter) {
		t.Fatalf("Expected only a key error, got %v", err)
	}
	if out != "" {
		t.Fatalf("Expected no output, got %q", out)
	}
}

func TestUnsupported(t *testing.T) {
	out, err := EncodeMessage("Hello World", ReferenceKey)
	if !errors.Is(err, ErrUnsupportedCharacter) {
		t.Fatalf("Expected unsupported character, got %v", err)
	}
	if out != "" {
		t.Fatalf("Expected no output, got %q", out)
	}

	var uerr *UnsupportedCharacterError
	if !errors.As(err, &uerr) {
		t.Fatalf("Expected UnsupportedCharacterError, got %T", err)
	}
	if have, want := *uerr, (UnsupportedCharacterError{Char: ' ', Offset: 5}); have != want {
		t.Fatalf("Error %+v, want %+v", have, want)
	}

	have, err := EncodeMessage("Hello World", ReferenceKey, WithStrip(true))
	if err != nil {
		t.Fatal(err)
	}
	want, err := EncodeMessage("HelloWorld", ReferenceKey)
	if err != nil {
		t.Fatal(err)
	}
	if have != want {
		t.Fatalf("Stripped %q != %q", have, want)
	}
}

func TestPure(t *testing.T) {
	key := ReferenceKey
	if _, err := EncodeMessage("HelloWorld!", key); err != nil {
		t.Fatal(err)
	}
	if key != ReferenceKey {
		t.Fatalf("EncodeMessage side effect: key changed to %+v", key)
	}
}

func TestMaxHops(t *testing.T) {
	if have, want := maxHops, 8*18+24; have != want {
		t.Fatalf("maxHops %d, want %d", have, want)
	}
}

func TestRoutingCycle(t *testing.T) {
	var redirect machine.Terminal
	for slot := range machine.Slots {
		for pos := range machine.Size(slot) {
			if term := machine.At(slot, pos); term.IsRedirect() {
				redirect = term
			}
		}
	}
	if !redirect.IsRedirect() {
		t.Fatal("machine has no redirects")
	}

	// Every terminal leads back into the same redirect.
	at = func(int, int) machine.Terminal { return redirect }
	t.Cleanup(func() { at = machine.At })

	s, err := NewState(ReferenceKey)
	if err != nil {
		t.Fatal(err)
	}
	_, err = EncodeLetter('a', s)
	if !errors.Is(err, ErrRoutingCycle) {
		t.Fatalf("Expected ErrRoutingCycle, got %v", err)
	}
	if have, want := s.Positions(), ReferenceKey.Positions; have != want {
		t.Fatalf("Positions %v after failed letter, want %v", have, want)
	}

	if _, err := EncodeMessage("HelloWorld!", ReferenceKey, WithStrip(true)); !errors.Is(err, ErrRoutingCycle) {
		t.Fatalf("EncodeMessage with strip: expected ErrRoutingCycle, got %v", err)
	}
}
