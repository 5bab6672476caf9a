package imagecache

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testImage() []byte {
	return bytes.Repeat([]byte{0xff, 0xd8, 0xff, 0xe0}, 64) // 256 bytes
}

func newTestCache(t *testing.T) (*Cache, *DiskStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "/avatars")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	return New(store, 5*time.Second), store, dir
}

func TestFetchDownloadsOnce(t *testing.T) {
	downloads := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		downloads++
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(testImage())
	}))
	defer srv.Close()

	cache, _, _ := newTestCache(t)
	ctx := context.Background()

	first := cache.Fetch(ctx, srv.URL+"/avatar.jpg", "TestUser")
	if first == "" {
		t.Fatal("first fetch returned no reference")
	}
	second := cache.Fetch(ctx, srv.URL+"/avatar.jpg", "TestUser")
	if second != first {
		t.Errorf("second fetch returned %q, want stable reference %q", second, first)
	}
	if downloads != 1 {
		t.Errorf("source fetched %d times, want exactly 1", downloads)
	}
	if !strings.HasPrefix(first, "/avatars/testuser_") {
		t.Errorf("reference %q does not carry the lowercased owner prefix", first)
	}
}

func TestFetchMissingInputs(t *testing.T) {
	cache, _, _ := newTestCache(t)
	ctx := context.Background()

	if got := cache.Fetch(ctx, "", "user"); got != "" {
		t.Errorf("Fetch with empty URL = %q, want \"\"", got)
	}
	if got := cache.Fetch(ctx, "http://example.com/a.jpg", ""); got != "" {
		t.Errorf("Fetch with empty username = %q, want \"\"", got)
	}
}

func TestFetchRejectsSmallPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("nope"))
	}))
	defer srv.Close()

	cache, _, dir := newTestCache(t)
	if got := cache.Fetch(context.Background(), srv.URL+"/tiny.jpg", "user"); got != "" {
		t.Errorf("Fetch = %q, want rejection of implausibly small payload", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("%d files stored for a rejected payload", len(entries))
	}
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusForbidden)
	}))
	defer srv.Close()

	cache, _, _ := newTestCache(t)
	if got := cache.Fetch(context.Background(), srv.URL+"/a.jpg", "user"); got != "" {
		t.Errorf("Fetch = %q, want \"\" on non-2xx", got)
	}
}

func TestFilenameDeterministic(t *testing.T) {
	a := Filename("UserOne", "https://cdn.example.com/x.jpg")
	b := Filename("userone", "https://cdn.example.com/x.jpg")
	if a != b {
		t.Errorf("filename differs by owner casing: %q vs %q", a, b)
	}
	c := Filename("userone", "https://cdn.example.com/y.jpg")
	if a == c {
		t.Error("distinct source URLs mapped to the same filename")
	}
	if !strings.HasSuffix(a, ".jpg") {
		t.Errorf("filename %q missing extension", a)
	}
}

func TestCleanupRemovesOldEntries(t *testing.T) {
	cache, store, dir := newTestCache(t)

	if err := store.Put("old_12345678.jpg", testImage(), "image/jpeg", false); err != nil {
		t.Fatal(err)
	}
	if err := store.Put("new_87654321.jpg", testImage(), "image/jpeg", false); err != nil {
		t.Fatal(err)
	}

	stale := time.Now().Add(-8 * 24 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "old_12345678.jpg"), stale, stale); err != nil {
		t.Fatal(err)
	}

	deleted, err := cache.Cleanup(DefaultMaxAge)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted %d entries, want 1", deleted)
	}
	if store.Exists("old_12345678.jpg") {
		t.Error("stale entry survived the sweep")
	}
	if !store.Exists("new_87654321.jpg") {
		t.Error("fresh entry was deleted")
	}
}

func TestPutIsPutIfAbsent(t *testing.T) {
	_, store, dir := newTestCache(t)

	if err := store.Put("a_00000000.jpg", []byte("first"), "image/jpeg", false); err != nil {
		t.Fatal(err)
	}
	if err := store.Put("a_00000000.jpg", []byte("second"), "image/jpeg", false); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "a_00000000.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first" {
		t.Errorf("stored content = %q, existing entry must not be overwritten", data)
	}

	if err := store.Put("a_00000000.jpg", []byte("third"), "image/jpeg", true); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(filepath.Join(dir, "a_00000000.jpg"))
	if string(data) != "third" {
		t.Errorf("stored content = %q, overwrite flag must replace the entry", data)
	}
}
