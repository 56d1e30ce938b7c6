package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return v
}

func TestResolveContainment(t *testing.T) {
	v := newTestVault(t)

	escapes := []string{
		"../../etc/passwd",
		"..",
		"notes/../../outside",
		"a/b/../../../c",
	}
	for _, p := range escapes {
		if _, err := v.Resolve(p); !errors.Is(err, ErrAccessDenied) {
			t.Errorf("Resolve(%q): want ErrAccessDenied, got %v", p, err)
		}
	}

	// Inner ".." that stays inside the root is fine.
	got, err := v.Resolve("a/b/../c")
	if err != nil {
		t.Fatalf("Resolve(a/b/../c): %v", err)
	}
	if want := filepath.Join(v.Root(), "a", "c"); got != want {
		t.Errorf("Resolve(a/b/../c) = %q, want %q", got, want)
	}
}

func TestResolveSiblingPrefixCollision(t *testing.T) {
	// A sibling directory whose name extends the root's must not pass the
	// containment check.
	base := t.TempDir()
	root := filepath.Join(base, "vault")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatal(err)
	}
	v, err := Open(root)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := v.Resolve("../vault2/secret"); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("sibling prefix escape: want ErrAccessDenied, got %v", err)
	}
}

func TestResolveNormalization(t *testing.T) {
	v := newTestVault(t)

	want, err := v.Resolve("x")
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{"/x/", "x/", "/x", " x "} {
		got, err := v.Resolve(p)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", p, err)
		}
		if got != want {
			t.Errorf("Resolve(%q) = %q, want %q", p, got, want)
		}
	}

	// Empty and "/" both mean the root itself.
	for _, p := range []string{"", "/"} {
		got, err := v.Resolve(p)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", p, err)
		}
		if got != v.Root() {
			t.Errorf("Resolve(%q) = %q, want root %q", p, got, v.Root())
		}
	}
}

func TestOpenRejectsBadRoot(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open(\"\") should fail")
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Open on a nonexistent directory should fail")
	}

	file := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(file); err == nil {
		t.Error("Open on a regular file should fail")
	}
}

func TestCreateReadRoundTrip(t *testing.T) {
	v := newTestVault(t)

	entry, conflicted, err := v.Create("notes/hello.md", "hello", false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if conflicted {
		t.Fatal("Create of a new file reported a conflict")
	}
	if entry.Path != "notes/hello.md" {
		t.Errorf("entry.Path = %q", entry.Path)
	}

	content, info, err := v.Read("notes/hello.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if content != "hello" {
		t.Errorf("content = %q, want %q", content, "hello")
	}
	if info.Size != int64(len("hello")) {
		t.Errorf("Size = %d", info.Size)
	}

	// No-overwrite create against an existing file is a soft conflict.
	_, conflicted, err = v.Create("notes/hello.md", "other", false)
	if err != nil {
		t.Fatalf("Create (conflict): %v", err)
	}
	if !conflicted {
		t.Error("expected conflict signal")
	}
	content, _, _ = v.Read("notes/hello.md")
	if content != "hello" {
		t.Errorf("content changed on conflicted create: %q", content)
	}

	// With overwrite the content is replaced.
	if _, conflicted, err = v.Create("notes/hello.md", "other", true); err != nil || conflicted {
		t.Fatalf("Create (overwrite): conflicted=%v err=%v", conflicted, err)
	}
	content, _, _ = v.Read("notes/hello.md")
	if content != "other" {
		t.Errorf("content after overwrite = %q", content)
	}
}

func TestUpdateAppend(t *testing.T) {
	v := newTestVault(t)

	if _, _, err := v.Create("a.txt", "hello", false); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Update("a.txt", "world", true); err != nil {
		t.Fatalf("Update append: %v", err)
	}

	content, _, err := v.Read("a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if content != "hello\nworld" {
		t.Errorf("content = %q, want %q", content, "hello\nworld")
	}

	if _, err := v.Update("a.txt", "fresh", false); err != nil {
		t.Fatalf("Update replace: %v", err)
	}
	content, _, _ = v.Read("a.txt")
	if content != "fresh" {
		t.Errorf("content = %q, want %q", content, "fresh")
	}
}

func TestUpdateMissingOrDirectory(t *testing.T) {
	v := newTestVault(t)

	if _, err := v.Update("missing.txt", "x", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update missing: want ErrNotFound, got %v", err)
	}

	if err := os.Mkdir(filepath.Join(v.Root(), "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Update("sub", "x", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update directory: want ErrNotFound, got %v", err)
	}
}

func TestReadErrors(t *testing.T) {
	v := newTestVault(t)

	if _, _, err := v.Read("nope.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read missing: want ErrNotFound, got %v", err)
	}

	if err := os.Mkdir(filepath.Join(v.Root(), "dir"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, _, err := v.Read("dir"); !errors.Is(err, ErrNotAFile) {
		t.Errorf("Read directory: want ErrNotAFile, got %v", err)
	}
}

func TestListSortedWithDirPlaceholders(t *testing.T) {
	v := newTestVault(t)

	for _, name := range []string{"b.txt", "a.txt"} {
		if err := os.WriteFile(filepath.Join(v.Root(), name), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(v.Root(), "zdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	entries, err := v.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for i, want := range []string{"a.txt", "b.txt", "zdir"} {
		if entries[i].Name != want {
			t.Errorf("entries[%d].Name = %q, want %q", i, entries[i].Name, want)
		}
	}

	dir := entries[2]
	if !dir.IsDir || dir.Size != 0 || !dir.ModTime.IsZero() {
		t.Errorf("directory entry = %+v, want IsDir, size 0, zero mod time", dir)
	}
	if entries[0].Size != 4 || entries[0].ModTime.IsZero() {
		t.Errorf("file entry = %+v, want stat'ed size and mod time", entries[0])
	}
}

func TestListErrors(t *testing.T) {
	v := newTestVault(t)

	if _, err := v.List("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("List missing: want ErrNotFound, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(v.Root(), "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := v.List("f.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("List on file: want ErrNotFound, got %v", err)
	}

	if _, err := v.List("../elsewhere"); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("List escape: want ErrAccessDenied, got %v", err)
	}
}
