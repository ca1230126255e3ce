package prefs

import (
	"fmt"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec converts a field value to and from the string representation stored
// in a flat slot. Both directions may fail; a Decode failure reads as the
// field's default, an Encode failure leaves the document unchanged.
type Codec[F any] interface {
	Encode(F) (string, error)
	Decode(string) (F, error)
}

// Msgpack returns a Codec marshaling F with msgpack. The raw msgpack bytes
// are stored directly in the string slot (Go strings are binary-safe).
func Msgpack[F any]() Codec[F] {
	return msgpackCodec[F]{}
}

type msgpackCodec[F any] struct{}

func (msgpackCodec[F]) Encode(v F) (string, error) {
	raw, err := msgpack.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (msgpackCodec[F]) Decode(s string) (F, error) {
	var v F
	err := msgpack.Unmarshal([]byte(s), &v)
	return v, err
}

// Custom defines a flat field holding an arbitrary value behind a codec.
// A stored representation the codec cannot decode reads as the default.
func Custom[F any](st Store[Bag], key string, def F, codec Codec[F], opts ...FieldOption) *Field[Bag, F] {
	return newField(st, key, def, codedAccessor(key, def, codec.Encode, codec.Decode), opts)
}

// CustomSet defines a flat field holding a set of encoded values in a
// string-set slot. If any element fails to decode, the whole field reads as
// the default.
func CustomSet[F any](st Store[Bag], key string, def []F, codec Codec[F], opts ...FieldOption) *Field[Bag, []F] {
	return newField(st, key, slices.Clone(def), codedSetAccessor(key, def, codec.Encode, codec.Decode), opts)
}

// Enum defines a flat field over a string-kinded enumeration, stored by name.
// A stored name outside the declared values reads as the default. Panics at
// construction if the default is not among the declared values.
func Enum[E ~string](st Store[Bag], key string, def E, values []E, opts ...FieldOption) *Field[Bag, E] {
	if !slices.Contains(values, def) {
		panic(fmt.Errorf("prefs: %w: %q", ErrBadEnumDefault, string(def)))
	}
	valid := slices.Clone(values)
	encode := func(v E) (string, error) {
		return string(v), nil
	}
	decode := func(s string) (E, error) {
		v := E(s)
		if !slices.Contains(valid, v) {
			return def, fmt.Errorf("prefs: unknown enum value %q for key %q", s, key)
		}
		return v, nil
	}
	return newField(st, key, def, codedAccessor(key, def, encode, decode), opts)
}
