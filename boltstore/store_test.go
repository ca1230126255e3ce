package boltstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/andreyvit/prefs"
)

type settings struct {
	Theme string `msgpack:"t"`
	Count int64  `msgpack:"c"`
}

func open[D any](t *testing.T, path string, initial D) *Store[D] {
	t.Helper()
	st, err := Open(path, initial, Options{Logf: t.Logf, IsTesting: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	st := open(t, path, settings{Theme: "light"})
	err := st.Transact(ctx, func(s settings) (settings, error) {
		s.Theme = "dark"
		s.Count = 3
		return s, nil
	})
	if err != nil {
		t.Fatalf("Transact err = %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close err = %v", err)
	}

	st2 := open(t, path, settings{Theme: "light"})
	d, err := st2.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot err = %v", err)
	}
	if d.Theme != "dark" || d.Count != 3 {
		t.Fatalf("reopened document = %+v, wanted dark/3", d)
	}
}

func TestStore_InitialUsedWhenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	st := open(t, path, settings{Theme: "light"})
	d, err := st.Snapshot(ctx)
	if err != nil || d.Theme != "light" {
		t.Fatalf("Snapshot = (%+v, %v), wanted initial document", d, err)
	}
}

func TestStore_BodyErrorAborts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	st := open(t, path, settings{Count: 1})
	boom := errors.New("boom")
	err := st.Transact(ctx, func(s settings) (settings, error) {
		s.Count = 99
		return s, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transact err = %v, wanted %v", err, boom)
	}
	if d, _ := st.Snapshot(ctx); d.Count != 1 {
		t.Fatalf("Snapshot = %+v, wanted unchanged Count=1", d)
	}
}

func TestStore_BagDocumentRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	st := open(t, path, prefs.Bag{})
	count := prefs.Int64(st, "count", 0)
	tags := prefs.StringSet(st, "tags", nil)

	if err := count.Set(ctx, 41); err != nil {
		t.Fatalf("Set err = %v", err)
	}
	if err := count.Update(ctx, func(n int64) int64 { return n + 1 }); err != nil {
		t.Fatalf("Update err = %v", err)
	}
	if err := tags.Set(ctx, []string{"b", "a"}); err != nil {
		t.Fatalf("Set err = %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close err = %v", err)
	}

	st2 := open(t, path, prefs.Bag{})
	count2 := prefs.Int64(st2, "count", 0)
	if got, err := count2.Get(ctx); err != nil || got != 42 {
		t.Fatalf("Get after reopen = (%d, %v), wanted 42", got, err)
	}
	tags2 := prefs.StringSet(st2, "tags", nil)
	if got, _ := tags2.Get(ctx); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Get after reopen = %v, wanted [a b]", got)
	}
}

func TestStore_Changes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := open(t, path, settings{Theme: "light"})
	ch := st.Changes(ctx)

	select {
	case d := <-ch:
		if d.Theme != "light" {
			t.Fatalf("first emission = %+v, wanted current state", d)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for first emission")
	}

	err := st.Transact(ctx, func(s settings) (settings, error) {
		s.Theme = "dark"
		return s, nil
	})
	if err != nil {
		t.Fatalf("Transact err = %v", err)
	}

	select {
	case d := <-ch:
		if d.Theme != "dark" {
			t.Fatalf("second emission = %+v, wanted dark", d)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for commit emission")
	}
}

func TestStore_CustomBucket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	st, err := Open(path, settings{}, Options{Bucket: "app1", IsTesting: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	err = st.Transact(ctx, func(s settings) (settings, error) {
		s.Count = 5
		return s, nil
	})
	if err != nil {
		t.Fatalf("Transact err = %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close err = %v", err)
	}

	st2, err := Open(path, settings{}, Options{Bucket: "app2", IsTesting: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st2.Close()
	if d, _ := st2.Snapshot(ctx); d.Count != 0 {
		t.Fatalf("Snapshot from other bucket = %+v, wanted empty", d)
	}
}
