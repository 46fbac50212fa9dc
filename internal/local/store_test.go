package local

import (
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/tomato.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := s.Set("p", payload{Name: "focus", Count: 3}); err != nil {
		t.Fatal(err)
	}

	var got payload
	if err := s.Get("p", &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "focus" || got.Count != 3 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("k", []int{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("k", []int{3}); err != nil {
		t.Fatal(err)
	}

	var got []int
	if err := s.Get("k", &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 3 {
		t.Fatalf("expected [3], got %v", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)

	var dest string
	err := s.Get("nope", &dest)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetMalformedValue(t *testing.T) {
	s := newTestStore(t)

	// Corrupt the stored JSON directly.
	_, err := s.db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES ('bad', '{not json', '')`)
	if err != nil {
		t.Fatal(err)
	}

	var dest map[string]any
	if err := s.Get("bad", &dest); err == nil {
		t.Fatal("expected unmarshal error for corrupt value")
	}
}

func TestDeleteAndHas(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	ok, err := s.Has("k")
	if err != nil || !ok {
		t.Fatalf("expected key present, ok=%v err=%v", ok, err)
	}

	if err := s.Delete("k"); err != nil {
		t.Fatal(err)
	}
	ok, err = s.Has("k")
	if err != nil || ok {
		t.Fatalf("expected key absent, ok=%v err=%v", ok, err)
	}

	// Deleting again is a no-op.
	if err := s.Delete("k"); err != nil {
		t.Fatal(err)
	}
}

func TestKeysSorted(t *testing.T) {
	s := newTestStore(t)

	for _, k := range []string{"sessions-2025-01-02", "tasks", "sessions-2025-01-01"} {
		if err := s.Set(k, 1); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"sessions-2025-01-01", "sessions-2025-01-02", "tasks"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected keys %v, got %v", want, keys)
		}
	}
}
