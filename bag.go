package prefs

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// Bag is the flat document shape: an immutable property bag mapping string
// keys to typed values. Supported value types: string, int64, int32, float32,
// float64, bool and []string (treated as a set, kept sorted and deduplicated).
//
// The zero Bag is empty and ready to use. All mutation methods return a new
// Bag; a Bag handed to an accessor is never modified in place.
type Bag struct {
	m map[string]any
}

// MakeBag builds a Bag from the given items. Values must be of the supported
// types; []string values are normalized. Panics on an unsupported value type.
func MakeBag(items map[string]any) Bag {
	b := Bag{}
	for k, v := range items {
		b = b.With(k, v)
	}
	return b
}

func (b Bag) Len() int {
	return len(b.m)
}

// Get returns the raw slot value. Absent keys are legal and distinct from any
// stored value.
func (b Bag) Get(key string) (any, bool) {
	v, ok := b.m[key]
	return v, ok
}

func (b Bag) Has(key string) bool {
	_, ok := b.m[key]
	return ok
}

// Keys returns the keys in sorted order.
func (b Bag) Keys() []string {
	keys := make([]string, 0, len(b.m))
	for k := range b.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// With returns a copy of the bag with key mapped to value. Panics on an
// unsupported value type (a configuration error, not a data error).
func (b Bag) With(key string, value any) Bag {
	switch v := value.(type) {
	case string, int64, int32, float32, float64, bool:
	case []string:
		value = normalizeSet(v)
	default:
		panic(fmt.Errorf("prefs: unsupported bag value type %T for key %q", value, key))
	}
	m := maps.Clone(b.m)
	if m == nil {
		m = make(map[string]any, 1)
	}
	m[key] = value
	return Bag{m}
}

// Without returns a copy of the bag with key absent.
func (b Bag) Without(key string) Bag {
	if _, ok := b.m[key]; !ok {
		return b
	}
	m := maps.Clone(b.m)
	delete(m, key)
	return Bag{m}
}

// Equal reports whether two bags hold the same keys with equal values.
func (b Bag) Equal(other Bag) bool {
	if len(b.m) != len(other.m) {
		return false
	}
	for k, v := range b.m {
		ov, ok := other.m[k]
		if !ok || !valueEqual(v, ov) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	as, aok := a.([]string)
	bs, bok := b.([]string)
	if aok || bok {
		return aok && bok && slices.Equal(as, bs)
	}
	return a == b
}

// normalizeSet returns a sorted, deduplicated copy of elems.
func normalizeSet(elems []string) []string {
	out := slices.Clone(elems)
	sort.Strings(out)
	return slices.Compact(out)
}

// Bag values are stored with an explicit kind tag so that the integer widths
// and the set type survive a round trip exactly. Format per entry:
// key, then [kind, value].
const (
	bagKindString  = 1
	bagKindInt64   = 2
	bagKindInt32   = 3
	bagKindFloat32 = 4
	bagKindFloat64 = 5
	bagKindBool    = 6
	bagKindSet     = 7
)

var (
	_ msgpack.CustomEncoder = Bag{}
	_ msgpack.CustomDecoder = (*Bag)(nil)
)

func (b Bag) EncodeMsgpack(enc *msgpack.Encoder) error {
	keys := b.Keys()
	if err := enc.EncodeMapLen(len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		if err := enc.EncodeString(k); err != nil {
			return err
		}
		if err := encodeBagValue(enc, b.m[k]); err != nil {
			return err
		}
	}
	return nil
}

func encodeBagValue(enc *msgpack.Encoder, value any) error {
	var kind int64
	switch value.(type) {
	case string:
		kind = bagKindString
	case int64:
		kind = bagKindInt64
	case int32:
		kind = bagKindInt32
	case float32:
		kind = bagKindFloat32
	case float64:
		kind = bagKindFloat64
	case bool:
		kind = bagKindBool
	case []string:
		kind = bagKindSet
	default:
		return fmt.Errorf("prefs: unsupported bag value type %T", value)
	}
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeInt(kind); err != nil {
		return err
	}
	switch v := value.(type) {
	case string:
		return enc.EncodeString(v)
	case int64:
		return enc.EncodeInt(v)
	case int32:
		return enc.EncodeInt(int64(v))
	case float32:
		return enc.EncodeFloat32(v)
	case float64:
		return enc.EncodeFloat64(v)
	case bool:
		return enc.EncodeBool(v)
	case []string:
		if err := enc.EncodeArrayLen(len(v)); err != nil {
			return err
		}
		for _, el := range v {
			if err := enc.EncodeString(el); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

func (b *Bag) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	m := make(map[string]any, n)
	for i := 0; i < n; i++ {
		k, err := dec.DecodeString()
		if err != nil {
			return err
		}
		v, err := decodeBagValue(dec)
		if err != nil {
			return fmt.Errorf("prefs: bag key %q: %w", k, err)
		}
		m[k] = v
	}
	*b = Bag{m}
	return nil
}

func decodeBagValue(dec *msgpack.Decoder) (any, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}
	if n != 2 {
		return nil, fmt.Errorf("bag value: wrong array length %d", n)
	}
	kind, err := dec.DecodeInt()
	if err != nil {
		return nil, err
	}
	switch kind {
	case bagKindString:
		return dec.DecodeString()
	case bagKindInt64:
		return dec.DecodeInt64()
	case bagKindInt32:
		return dec.DecodeInt32()
	case bagKindFloat32:
		return dec.DecodeFloat32()
	case bagKindFloat64:
		return dec.DecodeFloat64()
	case bagKindBool:
		return dec.DecodeBool()
	case bagKindSet:
		l, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		elems := make([]string, 0, l)
		for i := 0; i < l; i++ {
			el, err := dec.DecodeString()
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
		}
		return normalizeSet(elems), nil
	default:
		return nil, fmt.Errorf("bag value: unknown kind %d", kind)
	}
}
