package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		key     string
		wantErr bool
	}{
		{"flux_0001.png", false},
		{"sub/flux_0001.png", false},
		{"../escape.png", true},
		{"..\\escape.png", true},
		{"a/../../escape.png", true},
		{"", true},
		{"   ", true},
	}
	for _, tc := range tests {
		_, err := store.Resolve(tc.key)
		if (err != nil) != tc.wantErr {
			t.Errorf("Resolve(%q) error = %v, wantErr %v", tc.key, err, tc.wantErr)
		}
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "flux_0001.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !store.Exists("flux_0001.png") {
		t.Fatal("Exists(flux_0001.png) = false, want true")
	}
	if store.Exists("missing.png") {
		t.Fatal("Exists(missing.png) = true, want false")
	}
	if store.Exists("../flux_0001.png") {
		t.Fatal("Exists(../flux_0001.png) = true, want false")
	}
}
