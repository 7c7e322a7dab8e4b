package fsutil

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mustWrite := func(rel, content string) {
		t.Helper()
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("a.txt", "alpha")
	mustWrite("sub/b.txt", "bravo")
	mustWrite("sub/c.txt", "charlie")
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0755); err != nil {
		t.Fatal(err)
	}
	return root
}

func collect(t *testing.T, root string) []string {
	t.Helper()
	var got []string
	err := Walk(root, func(e Entry) error {
		rel := e.RelPath
		if e.IsDir {
			rel += "/"
		}
		got = append(got, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	return got
}

func TestWalkOrderAndEntries(t *testing.T) {
	root := buildTree(t)

	want := []string{"a.txt", "empty/", "sub/", "sub/b.txt", "sub/c.txt"}
	got := collect(t, root)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("walk order = %v, want %v", got, want)
	}

	// Repeated walks of an unmodified tree must be identical.
	again := collect(t, root)
	if !reflect.DeepEqual(got, again) {
		t.Errorf("walk not deterministic: %v vs %v", got, again)
	}
}

func TestWalkMissingRootFatal(t *testing.T) {
	if err := Walk(filepath.Join(t.TempDir(), "gone"), func(Entry) error { return nil }); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestCountFiles(t *testing.T) {
	root := buildTree(t)
	n, err := CountFiles(root)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("CountFiles = %d, want 3", n)
	}

	empty := t.TempDir()
	n, err = CountFiles(empty)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("CountFiles(empty) = %d, want 0", n)
	}
}

func TestWalkSkipsUnreadableSubdir(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits are ignored for root")
	}
	root := buildTree(t)
	locked := filepath.Join(root, "locked")
	if err := os.MkdirAll(locked, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(locked, "hidden.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(locked, 0000); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(locked, 0755)

	got := collect(t, root)
	for _, rel := range got {
		if rel == "locked/hidden.txt" {
			t.Error("walk descended into unreadable directory")
		}
	}
	// The directory entry itself is still reported.
	found := false
	for _, rel := range got {
		if rel == "locked/" {
			found = true
		}
	}
	if !found {
		t.Error("unreadable directory entry missing from walk")
	}
}
