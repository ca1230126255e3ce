package prefs

import "context"

// Field is a handle addressing one logical field of a store's document. It
// owns one accessor, one key, one store reference and one default value, and
// is immutable after construction: hold it forever, share it freely across
// goroutines. It keeps no transaction-scoped state.
type Field[D, F any] struct {
	st    Store[D]
	key   string
	def   F
	acc   accessor[D, F]
	cache *Cache
}

// FieldOption configures optional field behavior at construction time.
type FieldOption func(*fieldConfig)

type fieldConfig struct {
	cache *Cache
}

// WithCache attaches an injectable read cache to the field. Entries are keyed
// by field key + store identity, and every write path through the field or a
// batch invalidates them.
func WithCache(c *Cache) FieldOption {
	return func(cfg *fieldConfig) {
		cfg.cache = c
	}
}

func newField[D, F any](st Store[D], key string, def F, acc accessor[D, F], opts []FieldOption) *Field[D, F] {
	var cfg fieldConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &Field[D, F]{st: st, key: checkKey(key), def: def, acc: acc, cache: cfg.cache}
}

func (f *Field[D, F]) Key() string {
	return f.key
}

func (f *Field[D, F]) Default() F {
	return f.def
}

func (f *Field[D, F]) Store() Store[D] {
	return f.st
}

// Get reads the field from one snapshot of the document. A missing or
// undecodable value yields the default with a nil error; the error is
// non-nil only for store faults or context cancellation.
func (f *Field[D, F]) Get(ctx context.Context) (F, error) {
	if f.cache != nil {
		if v, ok := cacheGet[F](f.cache, f.st, f.key); ok {
			return v, nil
		}
	}
	doc, err := f.st.Snapshot(ctx)
	if err != nil {
		var zero F
		return zero, err
	}
	v := f.acc.read(doc)
	if f.cache != nil {
		cachePut(f.cache, f.st, f.key, v)
	}
	return v, nil
}

// Set writes the field in exactly one atomic transaction. No internal retry;
// a store fault is returned as is.
func (f *Field[D, F]) Set(ctx context.Context, value F) error {
	err := f.st.Transact(ctx, func(doc D) (D, error) {
		return f.acc.write(doc, value), nil
	})
	if err != nil {
		return err
	}
	f.invalidate()
	return nil
}

// Delete removes the field. For flat fields the key becomes absent; for
// nested fields this is defined as resetting to the default (the document
// always exists in total, so there is no structure to remove).
func (f *Field[D, F]) Delete(ctx context.Context) error {
	err := f.st.Transact(ctx, func(doc D) (D, error) {
		return f.acc.clear(doc), nil
	})
	if err != nil {
		return err
	}
	f.invalidate()
	return nil
}

// Reset writes the field's default value.
func (f *Field[D, F]) Reset(ctx context.Context) error {
	return f.Set(ctx, f.def)
}

// Update reads the current value and writes transform(current) inside one
// atomic transaction. The read happens against the transaction's own
// document, so no update is lost even under concurrent external writers.
func (f *Field[D, F]) Update(ctx context.Context, transform func(F) F) error {
	err := f.st.Transact(ctx, func(doc D) (D, error) {
		return f.acc.write(doc, transform(f.acc.read(doc))), nil
	})
	if err != nil {
		return err
	}
	f.invalidate()
	return nil
}

// Watch returns a stream of field values: the current value immediately, then
// one value per committed document change. The stream is not filtered to this
// field; any committed change re-emits. The channel closes when ctx is done.
func (f *Field[D, F]) Watch(ctx context.Context) <-chan F {
	in := f.st.Changes(ctx)
	out := make(chan F)
	go func() {
		defer close(out)
		for doc := range in {
			select {
			case out <- f.acc.read(doc):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// MustGet is Get with a background context, panicking on store faults. For
// call sites that cannot handle errors; everything else should use Get.
func (f *Field[D, F]) MustGet() F {
	return must(f.Get(context.Background()))
}

// MustSet is Set with a background context, panicking on store faults.
func (f *Field[D, F]) MustSet(value F) {
	ensure(f.Set(context.Background(), value))
}

// MustDelete is Delete with a background context, panicking on store faults.
func (f *Field[D, F]) MustDelete() {
	ensure(f.Delete(context.Background()))
}

// MustReset is Reset with a background context, panicking on store faults.
func (f *Field[D, F]) MustReset() {
	ensure(f.Reset(context.Background()))
}

// MustUpdate is Update with a background context, panicking on store faults.
func (f *Field[D, F]) MustUpdate(transform func(F) F) {
	ensure(f.Update(context.Background(), transform))
}

func (f *Field[D, F]) invalidate() {
	if f.cache != nil {
		f.cache.Invalidate(f.st, f.key)
	}
}

// fieldInvalidator lets batch transactions invalidate caches of touched
// fields after commit without knowing their value types.
type fieldInvalidator interface {
	invalidate()
}
