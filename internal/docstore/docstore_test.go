package docstore

import (
	"os"
	"strings"
	"testing"
)

func TestSaveAndPath(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	url, err := store.Save("visa.pdf", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(url, "/files/") {
		t.Errorf("url = %q, want /files/ prefix", url)
	}
	if !strings.HasSuffix(url, "-visa.pdf") {
		t.Errorf("url = %q, want -visa.pdf suffix", url)
	}

	path, err := store.Path(url)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("content = %q", data)
	}
}

func TestSave_CollidingNames(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	first, err := store.Save("visa.pdf", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := store.Save("visa.pdf", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first == second {
		t.Errorf("two uploads share URL %q", first)
	}
}

func TestSave_SanitizesName(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	url, err := store.Save("../../etc/pass wd?.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if strings.Contains(url, "..") || strings.Contains(url, " ") || strings.Contains(url, "?") {
		t.Errorf("url = %q, unsafe characters survived", url)
	}
}

func TestSave_EmptyName(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	if _, err := store.Save("..", strings.NewReader("x")); err == nil {
		t.Error("expected error for empty sanitized name")
	}
}

func TestPath_RejectsTraversal(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	for _, url := range []string{"/files/../secret", "/elsewhere/doc.pdf", "/files/", "doc.pdf"} {
		if _, err := store.Path(url); err == nil {
			t.Errorf("Path(%q) succeeded, want error", url)
		}
	}
}

func TestNewLocal_RequiresDir(t *testing.T) {
	if _, err := NewLocal(""); err == nil {
		t.Error("expected error for empty dir")
	}
}
