package sheets

import (
	"fmt"
	"testing"
)

func TestExistenceCacheAddHas(t *testing.T) {
	c := NewExistenceCache(4)
	if c.Has("a") {
		t.Error("empty cache reports key")
	}
	c.Add("a")
	c.Add("a")
	if !c.Has("a") {
		t.Error("added key not found")
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1 (duplicate adds collapse)", c.Len())
	}
}

func TestExistenceCacheBoundedEviction(t *testing.T) {
	c := NewExistenceCache(3)
	for i := 0; i < 5; i++ {
		c.Add(fmt.Sprintf("k%d", i))
	}
	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
	// oldest two evicted, newest three retained
	for _, gone := range []string{"k0", "k1"} {
		if c.Has(gone) {
			t.Errorf("%s should have been evicted", gone)
		}
	}
	for _, kept := range []string{"k2", "k3", "k4"} {
		if !c.Has(kept) {
			t.Errorf("%s should be retained", kept)
		}
	}
}

func TestExistenceCacheDefaultSize(t *testing.T) {
	c := NewExistenceCache(0)
	for i := 0; i < 200; i++ {
		c.Add(fmt.Sprintf("k%d", i))
	}
	if c.Len() != 128 {
		t.Errorf("len = %d, want default bound 128", c.Len())
	}
}
