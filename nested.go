package prefs

// Nested defines a field inside an arbitrarily structured document. get is a
// projection returning the field's current value; put must thread the new
// value back through every intermediate level, returning an updated copy of
// the document (creating optional intermediates with their defaults as
// needed) and never mutating the original.
//
// Deleting a nested field is defined as writing its default: the document
// always exists in total, so there is no absent-key concept to fall back on.
// This deliberately diverges from the flat shape, where Delete removes the
// key.
//
// A panic inside get (say, a projection through data the caller did not
// expect) degrades to the default, matching the decode-failure policy of the
// flat shape.
func Nested[D, F any](st Store[D], key string, def F, get func(D) F, put func(D, F) D, opts ...FieldOption) *Field[D, F] {
	if get == nil || put == nil {
		panic("prefs: Nested requires both a projection and a reconstruction function")
	}
	acc := accessor[D, F]{
		read: func(doc D) (v F) {
			defer func() {
				if p := recover(); p != nil {
					countDecodeFailure(key)
					v = def
				}
			}()
			return get(doc)
		},
		write: func(doc D, v F) D {
			return put(doc, v)
		},
		clear: func(doc D) D {
			return put(doc, def)
		},
	}
	return newField(st, key, def, acc, opts)
}
