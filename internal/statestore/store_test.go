package statestore

import (
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	if _, ok, err := store.Get(KeyCurrentScreen); err != nil || ok {
		t.Fatalf("Get on empty store = ok=%v err=%v, want absent", ok, err)
	}

	if err := store.Set(KeyCurrentScreen, "guest"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	got, ok, err := store.Get(KeyCurrentScreen)
	if err != nil || !ok || got != "guest" {
		t.Fatalf("Get = %q ok=%v err=%v, want guest", got, ok, err)
	}

	// Overwrites replace wholesale.
	if err := store.Set(KeyCurrentScreen, "auth"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	got, _, _ = store.Get(KeyCurrentScreen)
	if got != "auth" {
		t.Fatalf("Get after overwrite = %q, want auth", got)
	}

	if err := store.Delete(KeyCurrentScreen); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok, _ := store.Get(KeyCurrentScreen); ok {
		t.Fatal("Get after delete reported key present")
	}
	// Deleting a missing key is not an error.
	if err := store.Delete(KeyCurrentScreen); err != nil {
		t.Fatalf("Delete of missing key returned error: %v", err)
	}
}

func TestFileStoreRejectsTraversalKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	for _, key := range []string{"", "  ", "../escape", "a/b", "..\\windows"} {
		if err := store.Set(key, "x"); err == nil {
			t.Fatalf("Set(%q) accepted an invalid key", key)
		}
	}
}
