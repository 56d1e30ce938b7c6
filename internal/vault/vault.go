// Package vault provides sandboxed access to a single directory tree.
// Every operation takes a caller-supplied relative path, resolves it against
// the vault root, and refuses anything that escapes the root.
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Vault is a handle to the sandbox root. The root is canonicalized once at
// construction; all containment checks compare against the canonical form.
type Vault struct {
	root string
}

// Open canonicalizes root (absolute path, symlinks resolved) and verifies it
// is an existing directory.
func Open(root string) (*Vault, error) {
	if root == "" {
		return nil, errors.New("vault root is empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root %q: %w", root, err)
	}

	// EvalSymlinks closes the symlink-escape gap a plain prefix check has:
	// containment is checked against the real directory, not an alias of it.
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("canonicalize vault root %q: %w", abs, err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("stat vault root %q: %w", canonical, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %q is not a directory", canonical)
	}

	return &Vault{root: canonical}, nil
}

// Root returns the canonical sandbox root.
func (v *Vault) Root() string {
	return v.root
}

// Resolve maps a caller-supplied path onto an absolute path under the root.
// Leading and trailing slashes are stripped, so "", "/" and "x/" normalize
// the same way as their bare forms. The containment check compares path
// segments via filepath.Rel rather than a raw string prefix, so a sibling
// like /vault2 can never pass for root /vault.
func (v *Vault) Resolve(candidate string) (string, error) {
	trimmed := strings.Trim(strings.TrimSpace(candidate), "/")
	if trimmed == "" {
		return v.root, nil
	}

	abs := filepath.Join(v.root, filepath.FromSlash(trimmed))

	rel, err := filepath.Rel(v.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q resolves to %q outside vault root %q",
			ErrAccessDenied, candidate, abs, v.root)
	}

	return abs, nil
}

// FileEntry describes one vault entry. Path is relative to the vault root
// and always slash-separated, regardless of platform.
type FileEntry struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

func (v *Vault) entryFor(abs string, info os.FileInfo) FileEntry {
	rel, err := filepath.Rel(v.root, abs)
	if err != nil || rel == "." {
		rel = ""
	}

	e := FileEntry{
		Name:  info.Name(),
		Path:  filepath.ToSlash(rel),
		IsDir: info.IsDir(),
	}
	if !info.IsDir() {
		e.Size = info.Size()
		e.ModTime = info.ModTime()
	}
	return e
}

// List enumerates the immediate children of dir, sorted by name. Directories
// report size 0 and a zero modification time.
func (v *Vault) List(dir string) ([]FileEntry, error) {
	target, err := v.Resolve(dir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, dir)
	}

	children, err := os.ReadDir(target)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", dir, err)
	}

	entries := make([]FileEntry, 0, len(children))
	for _, child := range children {
		childInfo, err := child.Info()
		if err != nil {
			// Entry vanished between ReadDir and stat; skip it.
			continue
		}
		entries = append(entries, v.entryFor(filepath.Join(target, child.Name()), childInfo))
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Read returns the full content of a file as UTF-8 text along with its entry.
func (v *Vault) Read(path string) (string, FileEntry, error) {
	target, err := v.Resolve(path)
	if err != nil {
		return "", FileEntry{}, err
	}

	info, err := os.Stat(target)
	if err != nil {
		return "", FileEntry{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if info.IsDir() {
		return "", FileEntry{}, fmt.Errorf("%w: %s is a directory", ErrNotAFile, path)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return "", FileEntry{}, fmt.Errorf("read %q: %w", path, err)
	}

	return string(data), v.entryFor(target, info), nil
}

// Create writes a new file, creating parent directories as needed. If the
// target already exists and overwrite is false, nothing is written and
// conflicted is true — a soft signal, not an error.
func (v *Vault) Create(path, content string, overwrite bool) (entry FileEntry, conflicted bool, err error) {
	target, err := v.Resolve(path)
	if err != nil {
		return FileEntry{}, false, err
	}

	if info, statErr := os.Stat(target); statErr == nil && !overwrite {
		return v.entryFor(target, info), true, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return FileEntry{}, false, fmt.Errorf("create parents for %q: %w", path, err)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return FileEntry{}, false, fmt.Errorf("write %q: %w", path, err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return FileEntry{}, false, fmt.Errorf("stat %q after write: %w", path, err)
	}
	return v.entryFor(target, info), false, nil
}

// Update rewrites an existing file. With appendContent set, the new content
// is joined onto the old with a single newline instead of replacing it.
func (v *Vault) Update(path, content string, appendContent bool) (FileEntry, error) {
	target, err := v.Resolve(path)
	if err != nil {
		return FileEntry{}, err
	}

	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		return FileEntry{}, fmt.Errorf("%w: %s is not an existing file", ErrNotFound, path)
	}

	if appendContent {
		old, err := os.ReadFile(target)
		if err != nil {
			return FileEntry{}, fmt.Errorf("read %q before append: %w", path, err)
		}
		content = string(old) + "\n" + content
	}

	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return FileEntry{}, fmt.Errorf("write %q: %w", path, err)
	}

	info, err = os.Stat(target)
	if err != nil {
		return FileEntry{}, fmt.Errorf("stat %q after write: %w", path, err)
	}
	return v.entryFor(target, info), nil
}
