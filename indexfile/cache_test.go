package indexfile

import "testing"

type countingStore struct {
	BatchStore
	gets int
}

func (c *countingStore) Get(name string) ([]byte, error) {
	c.gets++
	return c.BatchStore.Get(name)
}

func TestCachedBatchStoreReadThrough(t *testing.T) {
	backing := &countingStore{BatchStore: NewMemoryBatchStore()}
	backing.Put("data.lance", []byte("cached payload"))

	c := NewCachedBatchStore(backing, 0)
	for i := 0; i < 3; i++ {
		got, err := c.Get("data.lance")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(got) != "cached payload" {
			t.Fatalf("Get = %q", got)
		}
	}
	if backing.gets != 1 {
		t.Fatalf("backing.gets = %d, want 1 (subsequent reads should hit the cache)", backing.gets)
	}
}

func TestCachedBatchStorePutRefreshesCache(t *testing.T) {
	backing := &countingStore{BatchStore: NewMemoryBatchStore()}
	c := NewCachedBatchStore(backing, 0)

	if err := c.Put("data.lance", []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := c.Get("data.lance")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("Get = %q, want v1", got)
	}
	if backing.gets != 0 {
		t.Fatalf("backing.gets = %d, want 0 (Put should populate the cache directly)", backing.gets)
	}
}
