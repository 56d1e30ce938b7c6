package vault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func writeFile(t *testing.T, v *Vault, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(v.Root(), name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSearchMatchCap(t *testing.T) {
	v := newTestVault(t)

	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "needle in line"
	}
	writeFile(t, v, "many.md", strings.Join(lines, "\n"))

	results, err := v.Search("", "needle")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}

	m := results[0]
	if len(m.Matches) != 5 {
		t.Fatalf("len(Matches) = %d, want 5", len(m.Matches))
	}
	for i, lm := range m.Matches {
		if lm.Line != i+1 {
			t.Errorf("Matches[%d].Line = %d, want %d (ascending line order)", i, lm.Line, i+1)
		}
	}
	if m.TotalHits != 10 {
		t.Errorf("TotalHits = %d, want 10", m.TotalHits)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	v := newTestVault(t)
	writeFile(t, v, "note.md", "Found the NEEDLE here")

	results, err := v.Search("", "needle")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Matches[0].Line != 1 {
		t.Fatalf("results = %+v", results)
	}
}

func TestSearchExtensionFilter(t *testing.T) {
	v := newTestVault(t)
	writeFile(t, v, "a.md", "needle")
	writeFile(t, v, "b.png", "needle")
	writeFile(t, v, "c.yaml", "needle")

	results, err := v.Search("", "needle")
	if err != nil {
		t.Fatal(err)
	}

	var paths []string
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	if len(paths) != 2 || paths[0] != "a.md" || paths[1] != "c.yaml" {
		t.Errorf("paths = %v, want [a.md c.yaml]", paths)
	}
}

func TestSearchSkipsDirectoriesAndNonRecursive(t *testing.T) {
	v := newTestVault(t)
	if err := os.MkdirAll(filepath.Join(v.Root(), "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, v, "sub/deep.md", "needle")
	writeFile(t, v, "top.md", "needle")

	results, err := v.Search("", "needle")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Path != "top.md" {
		t.Errorf("results = %+v, want only top.md (no recursion)", results)
	}
}

func TestSearchPartialFailureTolerance(t *testing.T) {
	v := newTestVault(t)
	writeFile(t, v, "good.md", "needle")
	writeFile(t, v, "bad.md", "needle")
	if err := os.Chmod(filepath.Join(v.Root(), "bad.md"), 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(filepath.Join(v.Root(), "bad.md"), 0o644) })

	if os.Getuid() == 0 {
		t.Skip("running as root, unreadable-file setup does not apply")
	}

	results, err := v.Search("", "needle")
	if err != nil {
		t.Fatalf("Search should tolerate a bad file: %v", err)
	}
	if len(results) != 1 || results[0].Path != "good.md" {
		t.Errorf("results = %+v, want only good.md", results)
	}
}

func TestSearchPreviewTruncation(t *testing.T) {
	v := newTestVault(t)
	writeFile(t, v, "long.txt", "needle "+strings.Repeat("x", 500))

	results, err := v.Search("", "needle")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d", len(results))
	}
	if len(results[0].Preview) != 200 {
		t.Errorf("len(Preview) = %d, want 200", len(results[0].Preview))
	}
}

func TestSearchPreviewKeepsRunesIntact(t *testing.T) {
	v := newTestVault(t)
	// 199 ASCII bytes then a 3-byte rune straddling the 200-byte cutoff.
	writeFile(t, v, "utf8.txt", "needle "+strings.Repeat("x", 192)+"€€€")

	results, err := v.Search("", "needle")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d", len(results))
	}
	p := results[0].Preview
	if !utf8.ValidString(p) {
		t.Errorf("preview is not valid UTF-8: %q", p)
	}
	if len(p) > 200 {
		t.Errorf("len(Preview) = %d, want <= 200", len(p))
	}
}

func TestSearchNoMatches(t *testing.T) {
	v := newTestVault(t)
	writeFile(t, v, "a.md", "nothing of interest")

	results, err := v.Search("", "needle")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want none", results)
	}
}
