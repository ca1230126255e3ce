package prefs

// Mapped derives a field from another field by converting its value type.
// The derived field shares the inner field's key, store and backing slot; it
// composes the inner accessor with the two conversion functions.
//
// A failing "to" conversion reads as the outer default, never as an error
// leaking through. A failing "from" conversion leaves the document unchanged,
// since there is no stored representation to fall back to.
func Mapped[D, F, G any](inner *Field[D, F], def G, to func(F) (G, error), from func(G) (F, error), opts ...FieldOption) *Field[D, G] {
	if to == nil || from == nil {
		panic("prefs: Mapped requires both conversion functions")
	}
	acc := accessor[D, G]{
		read: func(doc D) G {
			v, err := to(inner.acc.read(doc))
			if err != nil {
				countDecodeFailure(inner.key)
				return def
			}
			return v
		},
		write: func(doc D, v G) D {
			iv, err := from(v)
			if err != nil {
				countDecodeFailure(inner.key)
				return doc
			}
			return inner.acc.write(doc, iv)
		},
		clear: inner.acc.clear,
	}
	return newField(inner.st, inner.key, def, acc, opts)
}
