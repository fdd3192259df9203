package watch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lazypower/mindcity/internal/extract"
	"github.com/lazypower/mindcity/internal/graph"
)

// topLevelFiles are the fixed curated files watched at the workspace
// root.
var topLevelFiles = []string{
	"MEMORY.md",
	"MEMORY_EXTENDED.md",
	"SOUL.md",
	"USER.md",
	"AGENTS.md",
	"TOOLS.md",
}

// memorySubdir holds the daily-note files; every *.md directly inside
// it is watched.
const memorySubdir = "memory"

// Document is one watched file's content as read from disk. Paths are
// workspace-relative with forward slashes.
type Document struct {
	Path     string
	Content  []byte
	Hash     string
	Modified time.Time
}

// hashContent returns the hex sha256 of a document body.
func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// watchedPath reports whether a workspace-relative path belongs to the
// watched set.
func watchedPath(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, name := range topLevelFiles {
		if rel == name {
			return true
		}
	}
	dir, file := filepath.Split(rel)
	return strings.TrimSuffix(dir, "/") == memorySubdir && strings.HasSuffix(file, ".md")
}

// discover enumerates the watched set currently on disk, sorted by
// path. Fails only when the workspace root itself is unreadable.
func discover(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("stat workspace: %w", err)
	}

	var paths []string
	for _, name := range topLevelFiles {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			paths = append(paths, name)
		}
	}

	entries, err := os.ReadDir(filepath.Join(root, memorySubdir))
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			paths = append(paths, memorySubdir+"/"+entry.Name())
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// readDocument loads one watched file and computes its hash.
func readDocument(root, rel string) (*Document, error) {
	full := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", rel, err)
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}
	return &Document{
		Path:     rel,
		Content:  content,
		Hash:     hashContent(content),
		Modified: info.ModTime(),
	}, nil
}

// BuildStore extracts every document and folds it into a fresh graph
// store. Occurrence timestamps come from each document's modification
// time, so rebuilds preserve decay ages. Per-document extraction
// failures are reported through onError and skipped.
func BuildStore(ex *extract.Extractor, docs []Document, onError func(path string, err error)) *graph.Store {
	s := graph.NewStore()
	for _, doc := range docs {
		paras, err := ex.Extract(doc.Content, doc.Path)
		if err != nil {
			if onError != nil {
				onError(doc.Path, err)
			}
			continue
		}
		s.AddDocument(doc.Path, paras, doc.Modified)
	}
	return s
}

// ReadAll discovers and reads the whole watched set in one shot.
// Unreadable individual files are skipped via onError.
func ReadAll(root string, onError func(path string, err error)) ([]Document, error) {
	paths, err := discover(root)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(paths))
	for _, rel := range paths {
		doc, err := readDocument(root, rel)
		if err != nil {
			if onError != nil {
				onError(rel, err)
			}
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}
