// Package document handles discovery and fingerprinting of source files.
// Documents are ephemeral: they are enumerated fresh on every ingestion run
// and only their derived chunks are persisted.
package document

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SupportedExtensions lists the file types the extractor can handle.
var SupportedExtensions = []string{".pdf", ".htm", ".html", ".txt"}

// Document is a discovered file on disk.
type Document struct {
	Path      string
	Filename  string
	Extension string
}

// Scanner enumerates supported documents under a root folder.
type Scanner struct {
	root string
}

// NewScanner creates a Scanner rooted at folder, creating it if missing so a
// fresh deployment starts with an empty (not failing) document set.
func NewScanner(folder string) (*Scanner, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("creating docs folder %s: %w", folder, err)
	}
	return &Scanner{root: folder}, nil
}

// Root returns the scanned folder.
func (s *Scanner) Root() string {
	return s.root
}

// Scan walks the folder (including subdirectories) and returns all supported
// documents ordered lexicographically by filename. The deterministic order
// keeps ingestion logs and tests reproducible.
func (s *Scanner) Scan() ([]Document, error) {
	supported := make(map[string]bool, len(SupportedExtensions))
	for _, ext := range SupportedExtensions {
		supported[ext] = true
	}

	var docs []Document
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !supported[ext] {
			return nil
		}
		docs = append(docs, Document{
			Path:      path,
			Filename:  d.Name(),
			Extension: ext,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning docs folder %s: %w", s.root, err)
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Filename != docs[j].Filename {
			return docs[i].Filename < docs[j].Filename
		}
		return docs[i].Path < docs[j].Path
	})
	return docs, nil
}
