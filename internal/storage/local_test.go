package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLocalStorage_PutGet(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}
	ctx := context.Background()

	content := []byte("<svg></svg>")
	key := "exports/chart-1/light-abc.svg"

	etag, err := storage.Put(ctx, key, content, "image/svg+xml")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if etag != ETag(content) {
		t.Errorf("etag = %s, want %s", etag, ETag(content))
	}

	exists, err := storage.Exists(ctx, key)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected object to exist")
	}

	got, err := storage.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}

	if err := storage.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := storage.Get(ctx, key); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
	if err := storage.Delete(ctx, key); err != nil {
		t.Errorf("deleting a missing object should succeed: %v", err)
	}
}

func TestLocalStorage_List(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, key := range []string{"exports/b/x.svg", "exports/a/y.svg", "backups/charts-1.json"} {
		if _, err := storage.Put(ctx, key, []byte(key), ""); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := storage.List(ctx, "exports/")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "exports/a/y.svg" || keys[1] != "exports/b/x.svg" {
		t.Errorf("unexpected keys: %v", keys)
	}
}

func TestLocalStorage_KeyCannotEscapeBase(t *testing.T) {
	base := t.TempDir()
	storage, err := NewLocalStorage(base)
	if err != nil {
		t.Fatal(err)
	}
	path, err := storage.fullPath("../../etc/passwd")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(path, base) {
		t.Errorf("path %s escapes base %s", path, base)
	}
}

func TestETag_Deterministic(t *testing.T) {
	a := ETag([]byte("chart"))
	if len(a) != 32 {
		t.Errorf("etag length = %d, want 32", len(a))
	}
	if a != ETag([]byte("chart")) {
		t.Error("etag should be deterministic")
	}
	if a == ETag([]byte("chart2")) {
		t.Error("different content should hash differently")
	}
}

func TestKeys(t *testing.T) {
	key := ExportKey("abc", "dark", "svg", []byte("x"))
	if !strings.HasPrefix(key, "exports/abc/dark-") || !strings.HasSuffix(key, ".svg") {
		t.Errorf("unexpected export key %s", key)
	}

	at := time.Date(2024, 4, 5, 10, 30, 0, 0, time.UTC)
	if got := BackupKey(at); got != "backups/charts-20240405T103000Z.json" {
		t.Errorf("unexpected backup key %s", got)
	}
}
