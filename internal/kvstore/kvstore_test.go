package kvstore

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
)

func TestStore_GetMissing(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	v, err := s.Get("missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Errorf("expected nil value, got %q", v)
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	s, _ := Open(t.TempDir())

	if err := s.Set("k", []byte(`[1,2]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, err := s.Get("k")
	if err != nil || string(v) != "[1,2]" {
		t.Fatalf("expected [1,2], got %q (%v)", v, err)
	}

	if err := s.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if v, _ := s.Get("k"); v != nil {
		t.Errorf("expected key to be gone, got %q", v)
	}
}

func TestStore_InvalidKey(t *testing.T) {
	s, _ := Open(t.TempDir())
	for _, key := range []string{"", "../escape", "a/b"} {
		if err := s.Set(key, nil); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Set(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestStore_UpdateIsSerialized(t *testing.T) {
	s, _ := Open(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Update("counter", func(cur []byte) ([]byte, error) {
				n, _ := strconv.Atoi(string(cur))
				return []byte(strconv.Itoa(n + 1)), nil
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	v, _ := s.Get("counter")
	if string(v) != "20" {
		t.Errorf("expected 20, got %q", v)
	}
}

func TestStore_UpdateErrorKeepsValue(t *testing.T) {
	s, _ := Open(t.TempDir())
	_ = s.Set("k", []byte("old"))

	err := s.Update("k", func([]byte) ([]byte, error) { return nil, fmt.Errorf("boom") })
	if err == nil {
		t.Fatal("expected error")
	}
	if v, _ := s.Get("k"); string(v) != "old" {
		t.Errorf("expected old value, got %q", v)
	}
}
