package prefs

import "github.com/lightningnetwork/lnd/fn/v2"

// Scalar defines a flat field stored in a typed slot of a Bag. The key must
// be non-blank; this is checked at construction time. A slot holding a value
// of the wrong type reads as the default.
func Scalar[F ScalarValue](st Store[Bag], key string, def F, opts ...FieldOption) *Field[Bag, F] {
	return newField(st, key, def, scalarAccessor(key, def), opts)
}

// ScalarOpt defines a flat field that reports absence as fn.None instead of
// substituting a default. Writing None removes the key.
func ScalarOpt[F ScalarValue](st Store[Bag], key string, opts ...FieldOption) *Field[Bag, fn.Option[F]] {
	return newField(st, key, fn.None[F](), scalarOptAccessor[F](key), opts)
}

func String(st Store[Bag], key, def string, opts ...FieldOption) *Field[Bag, string] {
	return Scalar(st, key, def, opts...)
}

func Int64(st Store[Bag], key string, def int64, opts ...FieldOption) *Field[Bag, int64] {
	return Scalar(st, key, def, opts...)
}

func Int32(st Store[Bag], key string, def int32, opts ...FieldOption) *Field[Bag, int32] {
	return Scalar(st, key, def, opts...)
}

func Float64(st Store[Bag], key string, def float64, opts ...FieldOption) *Field[Bag, float64] {
	return Scalar(st, key, def, opts...)
}

func Float32(st Store[Bag], key string, def float32, opts ...FieldOption) *Field[Bag, float32] {
	return Scalar(st, key, def, opts...)
}

func Bool(st Store[Bag], key string, def bool, opts ...FieldOption) *Field[Bag, bool] {
	return Scalar(st, key, def, opts...)
}

// StringSet defines a flat field holding a set of strings. Values are
// normalized (sorted, deduplicated) on write; equality is set equality.
func StringSet(st Store[Bag], key string, def []string, opts ...FieldOption) *Field[Bag, []string] {
	return newField(st, key, normalizeSet(def), stringSetAccessor(key, def), opts)
}

func StringOpt(st Store[Bag], key string, opts ...FieldOption) *Field[Bag, fn.Option[string]] {
	return ScalarOpt[string](st, key, opts...)
}

func Int64Opt(st Store[Bag], key string, opts ...FieldOption) *Field[Bag, fn.Option[int64]] {
	return ScalarOpt[int64](st, key, opts...)
}

func Int32Opt(st Store[Bag], key string, opts ...FieldOption) *Field[Bag, fn.Option[int32]] {
	return ScalarOpt[int32](st, key, opts...)
}

func Float64Opt(st Store[Bag], key string, opts ...FieldOption) *Field[Bag, fn.Option[float64]] {
	return ScalarOpt[float64](st, key, opts...)
}

func Float32Opt(st Store[Bag], key string, opts ...FieldOption) *Field[Bag, fn.Option[float32]] {
	return ScalarOpt[float32](st, key, opts...)
}

func BoolOpt(st Store[Bag], key string, opts ...FieldOption) *Field[Bag, fn.Option[bool]] {
	return ScalarOpt[bool](st, key, opts...)
}

func StringSetOpt(st Store[Bag], key string, opts ...FieldOption) *Field[Bag, fn.Option[[]string]] {
	return newField(st, key, fn.None[[]string](), stringSetOptAccessor(key), opts)
}
