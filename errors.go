package prefs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBlankKey means a field was constructed with an empty or
	// whitespace-only key. Raised by panic at construction time.
	ErrBlankKey = errors.New("blank field key")

	// ErrForeignField means a field bound to one store was passed into a
	// batch running against a different store. Raised by panic inside the
	// batch block; the batch call returns it as an error.
	ErrForeignField = errors.New("field belongs to a different store")

	// ErrTxFinished means a batch scope was used after its batch call
	// returned. Raised by panic; scopes must not outlive their block.
	ErrTxFinished = errors.New("use of finished batch tx")

	// ErrBadEnumDefault means an enum field's default is not among its
	// declared values. Raised by panic at construction time.
	ErrBadEnumDefault = errors.New("enum default not among declared values")
)

// checkKey validates a field key at construction time, before any store
// access, and returns it unchanged.
func checkKey(key string) string {
	if strings.TrimSpace(key) == "" {
		panic(fmt.Errorf("prefs: %w: %q", ErrBlankKey, key))
	}
	return key
}
