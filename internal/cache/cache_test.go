package cache

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("openai", "gpt-4o-mini", "question", "doc")
	if a != Key("openai", "gpt-4o-mini", "question", "doc") {
		t.Error("Key should be deterministic")
	}
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key parts should be delimited")
	}
	if len(a) != len("rainier-v1-")+64 {
		t.Errorf("unexpected key length %d", len(a))
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	value := []byte("answer")
	if err := c.Set("k", value, 0); err != nil {
		t.Fatal(err)
	}
	value[0] = 'X'

	got, ok := c.Get("k")
	if !ok || string(got) != "answer" {
		t.Errorf("expected stored copy, got %q (found=%v)", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 item, got %d", c.Len())
	}

	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "answers")
	c := NewDiskCache(dir, time.Hour)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss on empty cache")
	}
	if err := c.Delete("missing"); err != nil {
		t.Errorf("deleting a missing key should not fail: %v", err)
	}

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Errorf("expected v, got %q", got)
	}

	if err := c.Set("expired", []byte("v"), -time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok := c.Get("expired"); ok {
		t.Error("expected expired entry to miss")
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after clear")
	}
}

func TestLayeredCachePromotesAndCounts(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss")
	}
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected memory hit")
	}

	// A fresh cache over the same directory only has the disk layer
	c2 := NewLayeredCache(time.Minute, dir, time.Hour)
	if _, ok := c2.Get("k"); !ok {
		t.Fatal("expected disk hit")
	}
	if _, ok := c2.Get("k"); !ok {
		t.Fatal("expected promoted memory hit")
	}

	if s := c.Stats(); s.MemoryHits != 1 || s.Misses != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
	if s := c2.Stats(); s.DiskHits != 1 || s.MemoryHits != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestMemoLoadsOnce(t *testing.T) {
	m := NewMemo[string]()
	var calls atomic.Int32

	load := func() (string, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return "loaded", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.Get("path", load)
			if err != nil || v != "loaded" {
				t.Errorf("unexpected result %q, %v", v, err)
			}
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("expected 1 load, got %d", calls.Load())
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 key, got %d", m.Len())
	}
}

func TestMemoDoesNotRememberErrors(t *testing.T) {
	m := NewMemo[int]()
	boom := errors.New("boom")

	if _, err := m.Get("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	v, err := m.Get("k", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("expected retry to load 7, got %d, %v", v, err)
	}
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	_ = c.Set("k", []byte("v"), 0)
	if _, ok := c.Get("k"); ok {
		t.Error("Nop should never hit")
	}
}
