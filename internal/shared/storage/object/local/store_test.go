package local

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir())

	size, mimeType, err := store.Save(context.Background(), "abc.txt", strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len("hello world")) {
		t.Fatalf("expected size %d, got %d", len("hello world"), size)
	}
	if !strings.HasPrefix(mimeType, "text/plain") {
		t.Fatalf("unexpected mime type %q", mimeType)
	}

	rc, err := store.Open(context.Background(), "abc.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestDeleteMissingFileIsNotAnError(t *testing.T) {
	store := New(t.TempDir())

	if err := store.Delete(context.Background(), "never-existed.txt"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestDeleteRemovesFile(t *testing.T) {
	store := New(t.TempDir())

	if _, _, err := store.Save(context.Background(), "abc.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(context.Background(), "abc.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Open(context.Background(), "abc.txt"); err == nil {
		t.Fatalf("expected open to fail after delete")
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	store := New(t.TempDir())

	for _, key := range []string{"../outside.txt", "/etc/passwd", "a/../../b"} {
		if _, _, err := store.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected save to reject key %q", key)
		}
		if _, err := store.Open(context.Background(), key); err == nil {
			t.Fatalf("expected open to reject key %q", key)
		}
	}
}
