// Package sourcecache reads and parses the source files a SCIP index
// references, caching one tree-sitter parse tree per file so the
// signature extractor and logic lifter never reparse the same file twice
// (component C4). Parsing is grounded on the multi-language tree-sitter
// setup used elsewhere in the pack: one grammar per SCIP language name.
package sourcecache

import (
	"os"
	"path/filepath"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/context-maximiser/scip-transcoder/pkg/xerrors"
)

// entry is one cached file's source bytes and parse tree.
type entry struct {
	source []byte
	tree   *sitter.Tree
	lang   *sitter.Language
	err    error
}

// Cache reads source files relative to a project root and parses them
// with tree-sitter on first access, keyed by relative path. Safe for
// concurrent use by the per-file enrichment workers in pkg/pipeline.
type Cache struct {
	root string

	mu      sync.Mutex
	entries map[string]*entry
}

// New creates a Cache rooted at root (the SCIP index's ProjectRoot).
func New(root string) *Cache {
	return &Cache{root: root, entries: make(map[string]*entry)}
}

// languageFor maps a SCIP document language string to a tree-sitter
// grammar. Unknown languages return (nil, false); load still caches the
// raw source bytes for them, but with no tree no signature or logic is
// extracted for their definitions.
func languageFor(lang string) (*sitter.Language, bool) {
	switch lang {
	case "go":
		return golang.GetLanguage(), true
	case "typescript":
		return typescript.GetLanguage(), true
	case "tsx":
		return tsx.GetLanguage(), true
	case "javascript", "jsx":
		return javascript.GetLanguage(), true
	case "python":
		return python.GetLanguage(), true
	case "rust":
		return rust.GetLanguage(), true
	case "java":
		return java.GetLanguage(), true
	case "kotlin":
		return kotlin.GetLanguage(), true
	default:
		return nil, false
	}
}

// Get returns the cached (source, tree) pair for relPath, parsing it on
// first access. lang is the SCIP document language string used to pick
// a grammar. The returned tree is nil when the language has no grammar;
// source is still populated whenever the file could be read.
//
// Read/parse failures are cached too, so repeat lookups for a broken
// file are O(1) and do not re-attempt disk I/O.
func (c *Cache) Get(relPath, lang string) ([]byte, *sitter.Tree, error) {
	c.mu.Lock()
	if e, ok := c.entries[relPath]; ok {
		c.mu.Unlock()
		return e.source, e.tree, e.err
	}
	c.mu.Unlock()

	e := c.load(relPath, lang)

	c.mu.Lock()
	c.entries[relPath] = e
	c.mu.Unlock()

	return e.source, e.tree, e.err
}

func (c *Cache) load(relPath, lang string) *entry {
	full := filepath.Join(c.root, relPath)
	source, err := os.ReadFile(full)
	if err != nil {
		return &entry{err: xerrors.Wrap(xerrors.IoRead, "sourcecache.Get", err).WithPath(relPath)}
	}

	sitterLang, ok := languageFor(lang)
	if !ok {
		return &entry{source: source}
	}

	parser := sitter.NewParser()
	parser.SetLanguage(sitterLang)
	tree, err := parser.ParseCtx(nil, nil, source)
	if err != nil {
		return &entry{source: source, err: xerrors.Wrap(xerrors.ParseFailed, "sourcecache.Get", err).WithPath(relPath)}
	}

	return &entry{source: source, tree: tree, lang: sitterLang}
}

// Lines splits source into 0-indexed lines without trailing newlines
// (a trailing "\r" is dropped too), matching SCIP's 0-indexed line
// numbers.
func Lines(source []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range source {
		if b == '\n' {
			end := i
			if end > start && source[end-1] == '\r' {
				end--
			}
			lines = append(lines, source[start:end])
			start = i + 1
		}
	}
	if start < len(source) {
		lines = append(lines, source[start:])
	}
	return lines
}
