package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestPhotoStoreWrite(t *testing.T) {
	store, err := NewPhotoStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewPhotoStore: %v", err)
	}

	key, err := store.Write(context.Background(), "listings/l1/photo.jpg", []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "listings/l1/photo.jpg" {
		t.Fatalf("key = %q", key)
	}

	data, err := os.ReadFile(filepath.Join(store.BasePath(), "listings", "l1", "photo.jpg"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("content = %q", data)
	}
}

func TestPhotoStoreRejectsTraversal(t *testing.T) {
	store, err := NewPhotoStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewPhotoStore: %v", err)
	}
	for _, key := range []string{"../escape.jpg", "a/../../escape.jpg", "", "."} {
		if _, err := store.Write(context.Background(), key, []byte("x")); err == nil {
			t.Fatalf("key %q accepted", key)
		}
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
		wantErr     bool
	}{
		{contentType: "image/jpeg", want: ".jpg"},
		{contentType: "IMAGE/PNG", want: ".png"},
		{contentType: "image/webp", want: ".webp"},
		{contentType: "application/pdf", wantErr: true},
		{contentType: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ExtensionFor(tc.contentType)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ExtensionFor(%q) accepted", tc.contentType)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ExtensionFor(%q): %v", tc.contentType, err)
		}
		if got != tc.want {
			t.Fatalf("ExtensionFor(%q) = %q, want %q", tc.contentType, got, tc.want)
		}
	}
}
