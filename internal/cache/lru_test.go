package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestLRU(t *testing.T) {
	c := NewLRU[int](2)

	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v", v, ok)
	}

	// b is now the least recently used entry.
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("Expected b to be evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size = %d, want 2", c.Size())
	}

	c.Set("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) after update = %d, want 10", v)
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Expected a to be deleted")
	}
	c.Delete("missing")
}

func TestLRU_Disabled(t *testing.T) {
	c := NewLRU[string](0)
	c.Set("a", "x")
	if _, ok := c.Get("a"); ok {
		t.Error("Expected disabled cache to store nothing")
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int](16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (i+j)%32)
				c.Set(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	if c.Size() > 16 {
		t.Errorf("Size = %d, exceeds bound", c.Size())
	}
}
