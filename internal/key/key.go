// Package key parses and stores nonigma keys: a comma separated wheel order,
// a comma separated list of starting positions, or a YAML key file.
package key

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"nonigma/internal/cipher"
	"nonigma/internal/ctxlog"
	"nonigma/internal/machine"

	"github.com/goccy/go-yaml"
)

func split(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseWheels parses a wheel order such as "lg,dg,bl,pu,re,or,pi,pe,gr".
func ParseWheels(s string) ([machine.Slots]string, error) {
	var wheels [machine.Slots]string
	parts := split(s)
	if len(parts) != machine.Slots {
		return wheels, fmt.Errorf("key: expected %d wheels, got %d", machine.Slots, len(parts))
	}
	copy(wheels[:], parts)
	return wheels, nil
}

// ParsePositions parses starting positions such as "11,14,12,11,17,9,9,13,0".
// Positions past the end of a slot wrap around; negative positions are rejected.
func ParsePositions(s string) ([machine.Slots]int, error) {
	var positions [machine.Slots]int
	parts := split(s)
	if len(parts) != machine.Slots {
		return positions, fmt.Errorf("key: expected %d positions, got %d", machine.Slots, len(parts))
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return positions, fmt.Errorf("key: position %d: %w", i, err)
		}
		if n < 0 {
			return positions, fmt.Errorf("key: position %d: %d is negative", i, n)
		}
		positions[i] = n
	}
	return positions, nil
}

// Parse parses and validates a key from its two string forms.
func Parse(wheels, positions string) (cipher.Key, error) {
	var (
		k   cipher.Key
		err error
	)
	if k.Wheels, err = ParseWheels(wheels); err != nil {
		return cipher.Key{}, err
	}
	if k.Positions, err = ParsePositions(positions); err != nil {
		return cipher.Key{}, err
	}
	if err := cipher.ValidateKey(k.Wheels); err != nil {
		return cipher.Key{}, fmt.Errorf("key: %w", err)
	}
	return k, nil
}

// Format returns the two string forms of k.
func Format(k cipher.Key) (wheels, positions string) {
	return strings.Join(k.Wheels[:], ","), FormatPositions(k.Positions)
}

// FormatPositions returns positions in the form ParsePositions accepts.
func FormatPositions(positions [machine.Slots]int) string {
	ps := make([]string, len(positions))
	for i, p := range positions {
		ps[i] = strconv.Itoa(p)
	}
	return strings.Join(ps, ",")
}

// File is the on-disk form of a key.
type File struct {
	Wheels    []string `yaml:"wheels" json:"wheels"`
	Positions []int    `yaml:"positions" json:"positions"`
}

// Key converts f to a validated key.
func (f File) Key() (cipher.Key, error) {
	var k cipher.Key
	if len(f.Wheels) != machine.Slots {
		return k, fmt.Errorf("key: expected %d wheels, got %d", machine.Slots, len(f.Wheels))
	}
	if len(f.Positions) != machine.Slots {
		return k, fmt.Errorf("key: expected %d positions, got %d", machine.Slots, len(f.Positions))
	}
	for i, p := range f.Positions {
		if p < 0 {
			return k, fmt.Errorf("key: position %d: %d is negative", i, p)
		}
	}
	copy(k.Wheels[:], f.Wheels)
	copy(k.Positions[:], f.Positions)
	if err := cipher.ValidateKey(k.Wheels); err != nil {
		return cipher.Key{}, fmt.Errorf("key: %w", err)
	}
	return k, nil
}

// FromKey returns the file form of k.
func FromKey(k cipher.Key) File {
	return File{
		Wheels:    append([]string(nil), k.Wheels[:]...),
		Positions: append([]int(nil), k.Positions[:]...),
	}
}

// Load reads a YAML key file.
func Load(ctx context.Context, filename string) (cipher.Key, error) {
	file, err := os.Open(filename)
	if err != nil {
		return cipher.Key{}, fmt.Errorf("key: open %q: %w", filename, err)
	}
	defer ctxlog.Close(ctx, "key file", file)

	dec := yaml.NewDecoder(file, yaml.Strict())

	var f File
	if err := dec.Decode(&f); err != nil {
		return cipher.Key{}, fmt.Errorf("key: yaml: %w", err)
	}

	return f.Key()
}

// Save writes k as a YAML key file readable only by the owner.
func Save(filename string, k cipher.Key) error {
	data, err := yaml.Marshal(FromKey(k))
	if err != nil {
		return fmt.Errorf("key: yaml: %w", err)
	}
	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("key: write %q: %w", filename, err)
	}
	return nil
}
