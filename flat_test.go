package prefs_test

import (
	"context"
	"slices"
	"testing"

	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/andreyvit/prefs"
)

func TestScalarOpt_AbsenceIsNone(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	nickname := prefs.StringOpt(st, "nickname")
	if got := must(nickname.Get(ctx)); !got.IsNone() {
		t.Fatalf("Get = %v, wanted None", got)
	}
}

func TestScalarOpt_RoundTrip(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	limit := prefs.Int64Opt(st, "limit")
	ensure(limit.Set(ctx, fn.Some(int64(10))))
	got := must(limit.Get(ctx))
	if !got.IsSome() || got.UnwrapOr(-1) != 10 {
		t.Fatalf("Get = %v, wanted Some(10)", got)
	}
}

func TestScalarOpt_WritingNoneRemovesKey(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	limit := prefs.Int64Opt(st, "limit")
	ensure(limit.Set(ctx, fn.Some(int64(10))))
	ensure(limit.Set(ctx, fn.None[int64]()))

	doc := must(st.Snapshot(ctx))
	if doc.Has("limit") {
		t.Fatalf("writing None left the key present")
	}
	if got := must(limit.Get(ctx)); !got.IsNone() {
		t.Fatalf("Get = %v, wanted None", got)
	}
}

func TestScalar_TypeMismatchReadsDefault(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	// Two handles disagreeing about the slot type: the older writer wins the
	// bytes, the newer reader degrades to its default.
	legacy := prefs.String(st, "limit", "")
	ensure(legacy.Set(ctx, "not a number"))

	limit := prefs.Int64(st, "limit", 42)
	got, err := limit.Get(ctx)
	if err != nil {
		t.Fatalf("Get err = %v, wanted nil (decode failures are silent)", err)
	}
	if got != 42 {
		t.Fatalf("Get = %d, wanted default 42", got)
	}

	opt := prefs.Int64Opt(st, "limit")
	if v := must(opt.Get(ctx)); !v.IsNone() {
		t.Fatalf("optional Get = %v, wanted None on type mismatch", v)
	}
}

func TestStringSet_RoundTripAndNormalization(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	tags := prefs.StringSet(st, "tags", nil)
	ensure(tags.Set(ctx, []string{"c", "a", "c", "b"}))
	if got := must(tags.Get(ctx)); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("Get = %v, wanted normalized [a b c]", got)
	}
}

func TestStringSet_DefaultIsCopied(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	tags := prefs.StringSet(st, "tags", []string{"x"})
	got := must(tags.Get(ctx))
	got[0] = "mutated"
	if again := must(tags.Get(ctx)); again[0] != "x" {
		t.Fatalf("mutating a returned set leaked into the default: %v", again)
	}
}

func TestStringSetOpt(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	tags := prefs.StringSetOpt(st, "tags")
	if got := must(tags.Get(ctx)); !got.IsNone() {
		t.Fatalf("Get = %v, wanted None", got)
	}

	ensure(tags.Set(ctx, fn.Some([]string{"b", "a"})))
	got := must(tags.Get(ctx))
	if !got.IsSome() || !slices.Equal(got.UnwrapOr(nil), []string{"a", "b"}) {
		t.Fatalf("Get = %v, wanted Some([a b])", got)
	}

	ensure(tags.Set(ctx, fn.None[[]string]()))
	if doc := must(st.Snapshot(ctx)); doc.Has("tags") {
		t.Fatalf("writing None left the key present")
	}
}
