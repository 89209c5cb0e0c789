// Package docstore stores uploaded documents (offer letters, visas, medical
// certificates) on the local filesystem and hands back the URL paths persisted
// on assignments and ledger rows.
package docstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/crewline/crewline/internal/models"
)

// Store saves uploaded documents and resolves their URLs.
type Store interface {
	// Save writes the document and returns its URL path, e.g. "/files/doc-ab12cd34-visa.pdf".
	Save(name string, r io.Reader) (string, error)
	// Path resolves a URL path returned by Save to a filesystem path.
	Path(url string) (string, error)
	// Dir is the directory the HTTP server mounts under /files.
	Dir() string
}

var _ Store = (*Local)(nil)

// urlPrefix is the route the HTTP server serves documents under.
const urlPrefix = "/files/"

// Local is a filesystem-backed Store.
type Local struct {
	dir string
}

// NewLocal creates a Local store rooted at dir, creating it if needed.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("docstore: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("docstore: create %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

// Save implements Store. Stored names get a random prefix so two uploads of
// "visa.pdf" never collide.
func (l *Local) Save(name string, r io.Reader) (string, error) {
	base := sanitize(filepath.Base(name))
	if base == "" {
		return "", fmt.Errorf("docstore: empty document name")
	}
	id, err := models.NewID("doc")
	if err != nil {
		return "", err
	}
	stored := id + "-" + base

	f, err := os.Create(filepath.Join(l.dir, stored))
	if err != nil {
		return "", fmt.Errorf("docstore: create %s: %w", stored, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("docstore: write %s: %w", stored, err)
	}
	return urlPrefix + stored, nil
}

// Path implements Store.
func (l *Local) Path(url string) (string, error) {
	stored, ok := strings.CutPrefix(url, urlPrefix)
	if !ok || stored == "" || stored != filepath.Base(stored) {
		return "", fmt.Errorf("docstore: invalid document URL %q", url)
	}
	p := filepath.Join(l.dir, stored)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("docstore: stat %s: %w", stored, err)
	}
	return p, nil
}

// Dir returns the store's root directory, for static file serving.
func (l *Local) Dir() string { return l.dir }

// sanitize strips characters that have no business in a stored filename.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".")
}
