package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStorage_Download(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	content := []byte("-----BEGIN CERTIFICATE-----\nabc\n-----END CERTIFICATE-----\n")
	if err := store.Put("config/ewallet.pem", content); err != nil {
		t.Fatalf("failed to seed object: %v", err)
	}

	ctx := context.Background()
	dst := filepath.Join(t.TempDir(), "ewallet.pem")
	if err := store.Download(ctx, "config/ewallet.pem", dst); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("failed to read downloaded file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q, want %q", got, content)
	}
}

func TestLocalStorage_DownloadOverwrites(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	if err := store.Put("config/tnsnames.ora", []byte("new contents")); err != nil {
		t.Fatalf("failed to seed object: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "tnsnames.ora")
	if err := os.WriteFile(dst, []byte("stale contents from a previous run"), 0644); err != nil {
		t.Fatalf("failed to write stale file: %v", err)
	}

	if err := store.Download(context.Background(), "config/tnsnames.ora", dst); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	got, _ := os.ReadFile(dst)
	if string(got) != "new contents" {
		t.Errorf("expected overwrite, got %q", got)
	}
}

func TestLocalStorage_DownloadMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "out")
	err = store.Download(context.Background(), "config/nope", dst)
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalStorage_Exists(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	ctx := context.Background()
	exists, err := store.Exists(ctx, "config/ewallet.pem")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected object to not exist")
	}

	if err := store.Put("config/ewallet.pem", []byte("pem")); err != nil {
		t.Fatalf("failed to seed object: %v", err)
	}

	exists, err = store.Exists(ctx, "config/ewallet.pem")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected object to exist")
	}
}

func TestLocalStorage_ListObjects(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	seed := []string{"config/ewallet.pem", "config/tnsnames.ora", "other/readme"}
	for _, p := range seed {
		if err := store.Put(p, []byte("x")); err != nil {
			t.Fatalf("failed to seed %s: %v", p, err)
		}
	}

	objects, err := store.ListObjects(context.Background(), "config")
	if err != nil {
		t.Fatalf("ListObjects failed: %v", err)
	}
	if len(objects) != 2 {
		t.Errorf("expected 2 objects under config, got %d: %v", len(objects), objects)
	}

	empty, err := store.ListObjects(context.Background(), "missing-prefix")
	if err != nil {
		t.Fatalf("ListObjects on missing prefix failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty list for missing prefix, got %v", empty)
	}
}

func TestLocalStorage_CancelledContext(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Download(ctx, "config/x", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Error("expected error for cancelled context")
	}
}
