// Package wheel defines the nine wheels that can be fitted to the machine.
package wheel

// Wheel is a fixed table of signed offsets. A wheel only fits a slot of the
// same length.
type Wheel struct {
	Name   string
	Colour string
	deltas []int
}

// Len returns the number of offsets on the wheel.
func (w Wheel) Len() int {
	return len(w.deltas)
}

// Delta returns the offset at position i.
func (w Wheel) Delta(i int) int {
	return w.deltas[i]
}

// Deltas returns a copy of the wheel's offsets.
func (w Wheel) Deltas() []int {
	return append([]int(nil), w.deltas...)
}

var wheels = []Wheel{
	{"lg", "Light green", []int{+8, +4, -7, -5, +5, -4, +6, +3, -8, -5, -3, +4, -6, +7, +3, -4, +5, -3}},
	{"dg", "Dark green", []int{-9, +6, -8, -5, +4, +5, +8, -6, -4, +9, -5, +6, +8, +2, -8, -2, +5, -6}},
	{"bl", "Blue", []int{-1, -5, +6, +9, -7, +5, +5, +2, -6, -2, -5, -5, -9, +3, +5, +7, -3, +1}},
	{"pu", "Purple", []int{+2, -6, -2, -5, +6, +7, +9, +1, -1, +8, -6, +3, -7, +6, -3, -9, +5, -8}},
	{"re", "Red", []int{-6, +2, +4, -2, +3, +8, -4, -3, -9, +11, +6, +11, +9, -8, +1, -1, -6, +2, +6, -2, -11, -9, -11, +9}},
	{"or", "Orange", []int{+6, -4, +2, +4, -2, +3, -6, -4, -3, +8, +3, +5, +2, -3, -2, +4, -5, -8}},
	{"pi", "Pink", []int{-7, -2, +4, -7, +5, +3, -4, +3, -3, -5, -3, +7, +4, +2, +7, -2, -4, +2}},
	{"pe", "Peach", []int{+4, +4, -6, -8, -4, -4, -8, +2, +4, -2, +5, +6, -4, +8, +6, -5, +8, -6}},
	{"gr", "Grey", []int{+7, +8, -4, +9, -5, -8, +7, -7, +3, -8, +4, -3, -9, -7, -4, +8, +4, +5}},
}

var byName = func() map[string]Wheel {
	m := make(map[string]Wheel, len(wheels))
	for _, w := range wheels {
		m[w.Name] = w
	}
	return m
}()

// Get returns the wheel with the given short name.
func Get(name string) (Wheel, bool) {
	w, ok := byName[name]
	return w, ok
}

// Names returns the short names of all wheels in declaration order.
func Names() []string {
	names := make([]string, len(wheels))
	for i, w := range wheels {
		names[i] = w.Name
	}
	return names
}

// All returns every wheel in declaration order.
func All() []Wheel {
	return append([]Wheel(nil), wheels...)
}
