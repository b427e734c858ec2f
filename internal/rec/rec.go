// Package rec turns panics into errors at goroutine and command boundaries.
package rec

import (
	"fmt"
	"runtime/debug"
)

func rec(r any) error {
	switch t := r.(type) {
	case error:
		return fmt.Errorf("recovered panic: %w\n%s", t, debug.Stack())
	default:
		return fmt.Errorf("recovered panic: %v\n%s", r, debug.Stack())
	}
}

// Error recovers a panic and assigns it to the provided error.
func Error(err *error) {
	if r := recover(); r != nil {
		*err = rec(r)
	}
}

// Wrap recovers a panic with the provided format and arguments
// and assigns it to the provided error.
// The recovered panic is appended to the end of the arguments.
// If no panic was recovered, but the error is not nil, it is wrapped
// with the provided format and arguments as well.
func Wrap(err *error, format string, a ...any) {
	if r := recover(); r != nil {
		*err = fmt.Errorf(format, append(a, rec(r))...)
	} else if *err != nil {
		*err = fmt.Errorf(format, append(a, *err)...)
	}
}

// Guard wraps fn so that a panic inside it is returned as an error.
// Meant for errgroup.Go, where a panic would take the whole process down.
func Guard(fn func() error) func() error {
	return func() (err error) {
		defer Error(&err)
		return fn()
	}
}
