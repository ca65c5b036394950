package featcache

import (
	"context"
	"errors"
	"testing"
)

// storeFactory creates a fresh Store for each test.
type storeFactory func(t *testing.T) Store

func stores() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) Store {
			return NewMemory()
		},
		"badger": func(t *testing.T) Store {
			s, err := NewBadger(BadgerOptions{InMemory: true})
			if err != nil {
				t.Fatalf("NewBadger: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func sample() [][]float32 {
	return [][]float32{
		{1, 2, 3},
		{4, 5, 6},
	}
}

func equal(a, b [][]float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func TestSetGet(t *testing.T) {
	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()
			key := Key{Namespace: "cfg1", Source: "/data/a.wav"}

			if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get before Set: expected ErrNotFound, got %v", err)
			}
			if err := s.Set(ctx, key, sample()); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := s.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !equal(got, sample()) {
				t.Fatalf("Get = %v, want %v", got, sample())
			}

			// Mutating the returned matrix must not affect the stored one.
			got[0][0] = 99
			again, _ := s.Get(ctx, key)
			if again[0][0] != 1 {
				t.Fatalf("stored value aliased by caller: %v", again)
			}
		})
	}
}

func TestEmptyMatrix(t *testing.T) {
	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()
			key := Key{Namespace: "cfg", Source: "empty"}
			if err := s.Set(ctx, key, nil); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := s.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if len(got) != 0 {
				t.Fatalf("Get = %v, want empty", got)
			}
		})
	}
}

func TestRaggedRejected(t *testing.T) {
	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			err := s.Set(context.Background(), Key{Namespace: "cfg", Source: "x"}, [][]float32{{1, 2}, {3}})
			if err == nil {
				t.Fatal("expected error for ragged matrix")
			}
		})
	}
}

func TestDelete(t *testing.T) {
	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()
			key := Key{Namespace: "cfg", Source: "a"}
			if err := s.Set(ctx, key, sample()); err != nil {
				t.Fatal(err)
			}
			if err := s.Delete(ctx, key); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after Delete, got %v", err)
			}
			if err := s.Delete(ctx, key); err != nil {
				t.Fatalf("Delete of missing key: %v", err)
			}
		})
	}
}

func TestCountPurgeNamespaceBoundary(t *testing.T) {
	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()
			// "cfg" must not match "cfg2".
			for _, k := range []Key{
				{Namespace: "cfg", Source: "a"},
				{Namespace: "cfg", Source: "b"},
				{Namespace: "cfg2", Source: "a"},
			} {
				if err := s.Set(ctx, k, sample()); err != nil {
					t.Fatal(err)
				}
			}

			n, err := s.Count(ctx, "cfg")
			if err != nil {
				t.Fatalf("Count: %v", err)
			}
			if n != 2 {
				t.Fatalf("Count(cfg) = %d, want 2", n)
			}

			if err := s.Purge(ctx, "cfg"); err != nil {
				t.Fatalf("Purge: %v", err)
			}
			if n, _ := s.Count(ctx, "cfg"); n != 0 {
				t.Fatalf("Count(cfg) after Purge = %d, want 0", n)
			}
			if n, _ := s.Count(ctx, "cfg2"); n != 1 {
				t.Fatalf("Count(cfg2) after Purge = %d, want 1", n)
			}
		})
	}
}

func TestBadgerRequiresDir(t *testing.T) {
	if _, err := NewBadger(BadgerOptions{}); err == nil {
		t.Fatal("expected error without Dir")
	}
}

func TestBadgerOnDiskPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	key := Key{Namespace: "cfg", Source: "a"}

	s, err := NewBadger(BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	if err := s.Set(ctx, key, sample()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = NewBadger(BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if !equal(got, sample()) {
		t.Fatalf("Get = %v, want %v", got, sample())
	}
}
