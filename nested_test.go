package prefs_test

import (
	"context"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/andreyvit/prefs"
	"github.com/andreyvit/prefs/memstore"
)

type profile struct {
	Name    string   `msgpack:"n"`
	Address *address `msgpack:"a"`
}

type address struct {
	City string `msgpack:"c"`
	Zip  string `msgpack:"z"`
}

func setupProfile(t *testing.T) *memstore.Store[profile] {
	t.Helper()
	return memstore.New(profile{Name: "initial"}, memstore.Options{Logf: t.Logf})
}

// cityField reaches through the optional address, creating it with defaults
// when absent.
func cityField(st *memstore.Store[profile]) *prefs.Field[profile, string] {
	return prefs.Nested(st, "address.city", "unknown",
		func(p profile) string {
			return p.Address.City
		},
		func(p profile, city string) profile {
			addr := address{}
			if p.Address != nil {
				addr = *p.Address
			}
			addr.City = city
			p.Address = &addr
			return p
		})
}

func TestNested_ProjectionPanicReadsDefault(t *testing.T) {
	st := setupProfile(t)
	ctx := context.Background()

	city := cityField(st)

	// Address is nil, so the projection panics; that degrades to the
	// default just like a flat decode failure.
	got, err := city.Get(ctx)
	if err != nil {
		t.Fatalf("Get err = %v, wanted nil", err)
	}
	if got != "unknown" {
		t.Fatalf("Get = %q, wanted default %q", got, "unknown")
	}
}

func TestNested_RoundTrip(t *testing.T) {
	st := setupProfile(t)
	ctx := context.Background()

	city := cityField(st)
	ensure(city.Set(ctx, "Lisbon"))
	if got := must(city.Get(ctx)); got != "Lisbon" {
		t.Fatalf("Get = %q, wanted Lisbon", got)
	}

	doc := must(st.Snapshot(ctx))
	if doc.Name != "initial" {
		t.Fatalf("nested write clobbered sibling field Name: %q", doc.Name)
	}
	if doc.Address == nil || doc.Address.City != "Lisbon" {
		t.Fatalf("document = %+v, wanted intermediate address created", doc)
	}
}

func TestNested_WritePreservesSiblings(t *testing.T) {
	st := setupProfile(t)
	ctx := context.Background()

	city := cityField(st)
	ensure(st.Transact(ctx, func(p profile) (profile, error) {
		p.Address = &address{City: "Porto", Zip: "4000"}
		return p, nil
	}))

	ensure(city.Set(ctx, "Faro"))
	doc := must(st.Snapshot(ctx))
	if doc.Address.Zip != "4000" {
		t.Fatalf("nested write clobbered sibling field Zip: %q", doc.Address.Zip)
	}
}

func TestNested_DeleteEqualsSetDefault(t *testing.T) {
	ctx := context.Background()

	stA := setupProfile(t)
	stB := setupProfile(t)
	cityA := cityField(stA)
	cityB := cityField(stB)

	ensure(cityA.Set(ctx, "Lisbon"))
	ensure(cityB.Set(ctx, "Lisbon"))

	ensure(cityA.Delete(ctx))
	ensure(cityB.Set(ctx, cityB.Default()))

	docA := must(stA.Snapshot(ctx))
	docB := must(stB.Snapshot(ctx))
	rawA := must(msgpack.Marshal(docA))
	rawB := must(msgpack.Marshal(docB))
	if string(rawA) != string(rawB) {
		t.Fatalf("Delete != Set(default):\n  delete = %x\n  set    = %x", rawA, rawB)
	}
	if got := must(cityA.Get(ctx)); got != "unknown" {
		t.Fatalf("Get after Delete = %q, wanted default", got)
	}
}

func TestNested_BatchEdit(t *testing.T) {
	st := setupProfile(t)
	ctx := context.Background()

	city := cityField(st)
	name := prefs.Nested(st, "name", "",
		func(p profile) string { return p.Name },
		func(p profile, v string) profile { p.Name = v; return p })

	err := prefs.Edit(ctx, st, func(tx *prefs.EditTx[profile]) error {
		prefs.Set(tx, name, "Bob")
		prefs.Set(tx, city, "Lisbon")
		if got := prefs.Get(tx, name); got != "Bob" {
			t.Fatalf("Get(name) = %q, wanted just-written Bob", got)
		}
		return nil
	})
	ensure(err)

	doc := must(st.Snapshot(ctx))
	if doc.Name != "Bob" || doc.Address == nil || doc.Address.City != "Lisbon" {
		t.Fatalf("document = %+v, wanted both nested writes applied", doc)
	}
}
