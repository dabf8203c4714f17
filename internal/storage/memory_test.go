package storage

import "testing"

func TestMemoryDBPutGetDelete(t *testing.T) {
	db := NewMemory()
	if err := db.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatal(err)
	}
	v, err := db.Get([]byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "1" {
		t.Fatalf("got %s, want 1", v)
	}
	if err := db.Delete([]byte("a")); err != nil {
		t.Fatal(err)
	}
	if ok, _ := db.Has([]byte("a")); ok {
		t.Fatal("expected key to be absent after delete")
	}
}

func TestMemoryDBForEachPrefix(t *testing.T) {
	db := NewMemory()
	db.Put([]byte("u/1"), []byte("one"))
	db.Put([]byte("u/2"), []byte("two"))
	db.Put([]byte("v/1"), []byte("other"))

	count := 0
	err := db.ForEach([]byte("u/"), func(key, value []byte) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected 2 matches under prefix u/, got %d", count)
	}
}

func TestMemoryDBBatchCommitIsAtomic(t *testing.T) {
	db := NewMemory()
	db.Put([]byte("a"), []byte("old"))

	batch := db.NewBatch()
	batch.Put([]byte("a"), []byte("new"))
	batch.Put([]byte("b"), []byte("fresh"))
	batch.Delete([]byte("a"))
	batch.Put([]byte("a"), []byte("final"))

	if err := batch.Commit(); err != nil {
		t.Fatal(err)
	}

	v, err := db.Get([]byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "final" {
		t.Fatalf("got %s, want final (ops apply in order)", v)
	}
	v, err = db.Get([]byte("b"))
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "fresh" {
		t.Fatalf("got %s, want fresh", v)
	}
}
