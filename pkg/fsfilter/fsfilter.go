// Package fsfilter builds the file-inclusion predicate the driver passes
// into the classifier: a function from project-relative path to
// "participates in this run". The core pipeline only ever sees the
// resulting predicate — this package is the ordinary plumbing that
// builds one from include/exclude globs and .gitignore patterns.
package fsfilter

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Predicate reports whether a project-relative path should be processed.
type Predicate func(relPath string) bool

// Options configures predicate construction.
type Options struct {
	IncludeGlobs []string
	ExcludeGlobs []string
	UseGitignore bool
	Root         string // required when UseGitignore is true
}

// Build compiles Options into a Predicate. With no include globs, every
// path is a candidate unless excluded; an exclude glob or a matched
// .gitignore pattern always wins over an include glob, matching the
// usual "ignore is the last word" convention.
func Build(opts Options) (Predicate, error) {
	var ignorePatterns []string
	if opts.UseGitignore {
		patterns, err := loadGitignore(opts.Root)
		if err != nil {
			return nil, err
		}
		ignorePatterns = patterns
	}

	return func(relPath string) bool {
		clean := filepath.ToSlash(relPath)

		for _, pat := range opts.ExcludeGlobs {
			if match(pat, clean) {
				return false
			}
		}
		for _, pat := range ignorePatterns {
			if match(pat, clean) {
				return false
			}
		}

		if len(opts.IncludeGlobs) == 0 {
			return true
		}
		for _, pat := range opts.IncludeGlobs {
			if match(pat, clean) {
				return true
			}
		}
		return false
	}, nil
}

func match(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	if err != nil {
		return false
	}
	if ok {
		return true
	}
	// a directory-style pattern like "node_modules" or "node_modules/"
	// should also match anything beneath it.
	trimmed := strings.TrimSuffix(pattern, "/")
	if strings.HasPrefix(path, trimmed+"/") {
		return true
	}
	return false
}

// loadGitignore reads root/.gitignore, returning its non-blank,
// non-comment patterns verbatim (negation patterns "!pat" are not
// supported and are skipped, since this predicate has no concept of
// re-inclusion after an exclude).
func loadGitignore(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}
