package localstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/starford/finboard/internal/apperr"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type row struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestPutGet_LastWriteWins(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.Put(ctx, "c1", Key(PrefixBond, "7"), row{ID: 7, Name: "first"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := db.Put(ctx, "c1", Key(PrefixBond, "7"), row{ID: 7, Name: "second"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var got row
	if err := db.Get(ctx, "c1", "bond_7", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "second" {
		t.Errorf("name = %q, want second", got.Name)
	}
}

func TestGet_IsolatedPerClient(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.Put(ctx, "c1", "bond_1", row{ID: 1})

	var got row
	err := db.Get(ctx, "c2", "bond_1", &got)
	if !errors.Is(err, apperr.ErrLocalData) {
		t.Fatalf("err = %v, want ErrLocalData", err)
	}
}

func TestGet_CorruptEntry(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if err := db.PutRaw(ctx, "c1", "bond_9", "{not json"); err != nil {
		t.Fatalf("PutRaw: %v", err)
	}
	var got row
	if err := db.Get(ctx, "c1", "bond_9", &got); !errors.Is(err, apperr.ErrLocalData) {
		t.Fatalf("err = %v, want ErrLocalData", err)
	}
}

func TestPutMany_DeleteForget(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	err := db.PutMany(ctx, "c1", map[string]any{
		"bond_1": row{ID: 1},
		"bond_2": row{ID: 2},
	})
	if err != nil {
		t.Fatalf("PutMany: %v", err)
	}

	var got row
	if err := db.Get(ctx, "c1", "bond_2", &got); err != nil || got.ID != 2 {
		t.Fatalf("Get bond_2 = %+v, %v", got, err)
	}

	if err := db.Forget(ctx, "c1"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	for _, key := range []string{"bond_1", "bond_2"} {
		if err := db.Get(ctx, "c1", key, &got); !errors.Is(err, apperr.ErrLocalData) {
			t.Errorf("after forget %s err = %v", key, err)
		}
	}
}
