package prefs

import (
	"slices"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// accessor is the read/write/clear function triple mapping between a document
// and one field value.
//
// read is total: it returns the field's default on absence, slot type
// mismatch, or decode failure, and never fails. write and clear return an
// updated copy of the document and must not mutate it in place.
type accessor[D, F any] struct {
	read  func(D) F
	write func(D, F) D
	clear func(D) D
}

// ScalarValue enumerates the primitive slot types a Bag supports directly.
// Named types go through Enum, Custom or Mapped instead; slots always hold
// the exact primitive type.
type ScalarValue interface {
	string | int64 | int32 | float32 | float64 | bool
}

func scalarAccessor[F ScalarValue](key string, def F) accessor[Bag, F] {
	return accessor[Bag, F]{
		read: func(b Bag) F {
			if raw, ok := b.Get(key); ok {
				if v, ok := raw.(F); ok {
					return v
				}
				countDecodeFailure(key)
			}
			return def
		},
		write: func(b Bag, v F) Bag {
			return b.With(key, v)
		},
		clear: func(b Bag) Bag {
			return b.Without(key)
		},
	}
}

func scalarOptAccessor[F ScalarValue](key string) accessor[Bag, fn.Option[F]] {
	return accessor[Bag, fn.Option[F]]{
		read: func(b Bag) fn.Option[F] {
			if raw, ok := b.Get(key); ok {
				if v, ok := raw.(F); ok {
					return fn.Some(v)
				}
				countDecodeFailure(key)
			}
			return fn.None[F]()
		},
		write: func(b Bag, v fn.Option[F]) Bag {
			if v.IsNone() {
				return b.Without(key)
			}
			return b.With(key, v.UnwrapOr(*new(F)))
		},
		clear: func(b Bag) Bag {
			return b.Without(key)
		},
	}
}

func stringSetAccessor(key string, def []string) accessor[Bag, []string] {
	def = normalizeSet(def)
	return accessor[Bag, []string]{
		read: func(b Bag) []string {
			if raw, ok := b.Get(key); ok {
				if v, ok := raw.([]string); ok {
					return slices.Clone(v)
				}
				countDecodeFailure(key)
			}
			return slices.Clone(def)
		},
		write: func(b Bag, v []string) Bag {
			return b.With(key, v)
		},
		clear: func(b Bag) Bag {
			return b.Without(key)
		},
	}
}

func stringSetOptAccessor(key string) accessor[Bag, fn.Option[[]string]] {
	return accessor[Bag, fn.Option[[]string]]{
		read: func(b Bag) fn.Option[[]string] {
			if raw, ok := b.Get(key); ok {
				if v, ok := raw.([]string); ok {
					return fn.Some(slices.Clone(v))
				}
				countDecodeFailure(key)
			}
			return fn.None[[]string]()
		},
		write: func(b Bag, v fn.Option[[]string]) Bag {
			if v.IsNone() {
				return b.Without(key)
			}
			return b.With(key, v.UnwrapOr(nil))
		},
		clear: func(b Bag) Bag {
			return b.Without(key)
		},
	}
}

// codedAccessor stores an encoded representation in a string slot. Decode
// failure (including a slot of the wrong type) degrades to the default;
// encode failure leaves the document unchanged. Both count as decode
// failures for metrics purposes.
func codedAccessor[F any](key string, def F, encode func(F) (string, error), decode func(string) (F, error)) accessor[Bag, F] {
	return accessor[Bag, F]{
		read: func(b Bag) F {
			if raw, ok := b.Get(key); ok {
				if s, ok := raw.(string); ok {
					if v, err := decode(s); err == nil {
						return v
					}
				}
				countDecodeFailure(key)
			}
			return def
		},
		write: func(b Bag, v F) Bag {
			s, err := encode(v)
			if err != nil {
				countDecodeFailure(key)
				return b
			}
			return b.With(key, s)
		},
		clear: func(b Bag) Bag {
			return b.Without(key)
		},
	}
}

// codedSetAccessor stores a set of encoded representations in a string-set
// slot. If any single element fails to decode, the whole read degrades to the
// default.
func codedSetAccessor[F any](key string, def []F, encode func(F) (string, error), decode func(string) (F, error)) accessor[Bag, []F] {
	return accessor[Bag, []F]{
		read: func(b Bag) []F {
			raw, ok := b.Get(key)
			if !ok {
				return slices.Clone(def)
			}
			elems, ok := raw.([]string)
			if !ok {
				countDecodeFailure(key)
				return slices.Clone(def)
			}
			out := make([]F, 0, len(elems))
			for _, s := range elems {
				v, err := decode(s)
				if err != nil {
					countDecodeFailure(key)
					return slices.Clone(def)
				}
				out = append(out, v)
			}
			return out
		},
		write: func(b Bag, vs []F) Bag {
			elems := make([]string, 0, len(vs))
			for _, v := range vs {
				s, err := encode(v)
				if err != nil {
					countDecodeFailure(key)
					return b
				}
				elems = append(elems, s)
			}
			return b.With(key, elems)
		},
		clear: func(b Bag) Bag {
			return b.Without(key)
		},
	}
}
