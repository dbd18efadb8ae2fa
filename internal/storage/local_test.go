package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewLocalStore(t *testing.T) {
	t.Run("creates directory if not exists", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")

		store, err := NewLocalStore(dir)
		if err != nil {
			t.Fatalf("NewLocalStore() error = %v", err)
		}
		if store.Dir() != dir {
			t.Errorf("Dir() = %v, want %v", store.Dir(), dir)
		}

		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("directory not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected directory, got file")
		}
	})

	t.Run("rejects empty directory", func(t *testing.T) {
		if _, err := NewLocalStore(""); err == nil {
			t.Error("expected error for empty dir")
		}
	})
}

func TestLocalStore_Save(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	t.Run("writes artifact under its name", func(t *testing.T) {
		path, err := store.Save(context.Background(), "rec_001.txt", bytes.NewReader([]byte("hola mundo.")))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if path != store.Path("rec_001.txt") {
			t.Errorf("Save() path = %v, want %v", path, store.Path("rec_001.txt"))
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read artifact: %v", err)
		}
		if string(content) != "hola mundo." {
			t.Errorf("got %q, want %q", string(content), "hola mundo.")
		}
	})

	t.Run("overwrites existing artifact", func(t *testing.T) {
		ctx := context.Background()
		if _, err := store.Save(ctx, "rec_002.txt", bytes.NewReader([]byte("first"))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		path, err := store.Save(ctx, "rec_002.txt", bytes.NewReader([]byte("second")))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		content, _ := os.ReadFile(path)
		if string(content) != "second" {
			t.Errorf("got %q, want %q", string(content), "second")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := store.Save(ctx, "rec_003.txt", bytes.NewReader(nil)); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

func TestLocalStore_MirrorNotConfigured(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	if _, err := store.Mirror(context.Background(), "rec_001.txt"); !errors.Is(err, ErrS3NotConfigured) {
		t.Errorf("Mirror() error = %v, want ErrS3NotConfigured", err)
	}
}
