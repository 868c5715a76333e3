package storage

import (
	"path/filepath"
	"reflect"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSetGetRoundtrip(t *testing.T) {
	store := openTestStore(t)

	if err := store.Set("user.progress", `{"scores":{}}`); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	value, ok, err := store.Get("user.progress")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false for a stored key")
	}
	if value != `{"scores":{}}` {
		t.Errorf("Get() = %q", value)
	}
}

func TestSetOverwrites(t *testing.T) {
	store := openTestStore(t)

	store.Set("k", "old")
	if err := store.Set("k", "new"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	value, _, err := store.Get("k")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if value != "new" {
		t.Errorf("Get() = %q, want %q", value, "new")
	}
}

func TestGetMissingKey(t *testing.T) {
	store := openTestStore(t)

	value, ok, err := store.Get("never-set")
	if err != nil {
		t.Fatalf("Get() error = %v for a missing key", err)
	}
	if ok {
		t.Error("Get() ok = true for a missing key")
	}
	if value != "" {
		t.Errorf("Get() = %q for a missing key", value)
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)

	store.Set("k", "v")
	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok, _ := store.Get("k"); ok {
		t.Error("Key still present after Delete")
	}

	// Deleting a missing key is fine
	if err := store.Delete("missing"); err != nil {
		t.Errorf("Delete(missing) failed: %v", err)
	}
}

func TestKeysSorted(t *testing.T) {
	store := openTestStore(t)

	store.Set("zebra", "1")
	store.Set("apple", "2")
	store.Set("mango", "3")

	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("Keys() failed: %v", err)
	}
	want := []string{"apple", "mango", "zebra"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	store.Set("save", "data")
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get("save")
	if err != nil || !ok {
		t.Fatalf("Get() after reopen = (%q, %v, %v)", value, ok, err)
	}
	if value != "data" {
		t.Errorf("Get() after reopen = %q, want %q", value, "data")
	}
}
