package safe

import (
	"reflect"

	"BetHub/logger"
	"BetHub/tools/errs"
)

// MustNotNil panics if the given value is nil.
// Useful for enforcing required dependencies during wiring.
func MustNotNil(v any, name string) {
	if v == nil || reflect.ValueOf(v).IsNil() {
		panic(name + " must not be nil")
	}
}

// DefaultString returns the dereferenced value of a string pointer,
// or the fallback if the pointer is nil.
func DefaultString(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

// DefaultInt returns the dereferenced value of an int pointer,
// or the fallback if the pointer is nil.
func DefaultInt(i *int, fallback int) int {
	if i == nil {
		return fallback
	}
	return *i
}

// SafeGo starts a new goroutine that recovers from panic,
// so that best-effort side effects (notification fan-out, audit publish)
// can never crash the request path.
func SafeGo(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("[SafeGo] %v", errs.ErrPanic(r))
			}
		}()
		f()
	}()
}
