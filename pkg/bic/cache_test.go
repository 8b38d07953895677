package bic

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.txt")
	if err := os.WriteFile(path, []byte(sampleDump), 0644); err != nil {
		t.Fatal(err)
	}

	cache, err := NewSnapshotCache(NewParser(Blacklist{}, 8), 4)
	if err != nil {
		t.Fatal(err)
	}

	info := cache.Load(path)
	if info.ClassSizes["Foo"] != 16 {
		t.Fatalf("ClassSizes[Foo] = %d, want 16", info.ClassSizes["Foo"])
	}

	// A second load must serve the memoized snapshot, not re-read the file.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	info = cache.Load(path)
	if info.ClassSizes["Foo"] != 16 {
		t.Error("snapshot was re-parsed instead of served from the cache")
	}
}

func TestSnapshotCacheDoesNotCacheEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.txt")

	cache, err := NewSnapshotCache(NewParser(Blacklist{}, 8), 4)
	if err != nil {
		t.Fatal(err)
	}

	if info := cache.Load(path); len(info.ClassSizes) != 0 {
		t.Fatalf("missing file produced a snapshot: %v", info.ClassSizes)
	}

	// Once the dump appears it must be picked up.
	if err := os.WriteFile(path, []byte(sampleDump), 0644); err != nil {
		t.Fatal(err)
	}
	if info := cache.Load(path); info.ClassSizes["Foo"] != 16 {
		t.Error("snapshot for a previously missing dump was not parsed")
	}
}
