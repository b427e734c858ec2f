package machine

import (
	"testing"
)

func TestValidate(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestSizes(t *testing.T) {
	if have, want := Sizes(), [Slots]int{18, 18, 18, 18, 24, 18, 18, 18, 18}; have != want {
		t.Fatalf("Sizes %v, want %v", have, want)
	}
	if have, want := Size(Hub), 24; have != want {
		t.Fatalf("Hub size %d, want %d", have, want)
	}
	if have, want := Terminals(), 168; have != want {
		t.Fatalf("Terminals %d, want %d", have, want)
	}
}

func TestAlphabet(t *testing.T) {
	alphabet := Alphabet()
	if have, want := len(alphabet), 72; have != want {
		t.Fatalf("Alphabet has %d characters, want %d", have, want)
	}

	for _, r := range alphabet {
		slot, pos, ok := Locate(r)
		if !ok {
			t.Fatalf("%q not located", r)
		}
		if have := At(slot, pos).Rune(); have != r {
			t.Fatalf("%q located at (%d, %d) which holds %q", r, slot, pos, have)
		}
	}
}

func TestLocate(t *testing.T) {
	for _, tc := range []struct {
		r         rune
		slot, pos int
	}{
		{'a', 0, 8},
		{'0', 2, 15},
		{'R', 6, 8},
		{'.', 7, 5},
		{'🙁', 8, 2},
		{'•', 8, 5},
	} {
		slot, pos, ok := Locate(tc.r)
		if !ok || slot != tc.slot || pos != tc.pos {
			t.Fatalf("Locate(%q) = (%d, %d, %t), want (%d, %d)", tc.r, slot, pos, ok, tc.slot, tc.pos)
		}
	}

	for _, r := range " *\n" {
		if _, _, ok := Locate(r); ok {
			t.Fatalf("Locate(%q) found", r)
		}
	}
}

func TestHubHasNoLeaves(t *testing.T) {
	for pos := range Size(Hub) {
		if !At(Hub, pos).IsRedirect() {
			t.Fatalf("Hub position %d is a leaf", pos)
		}
	}
}
