// Package corpus discovers test cases from the fixed on-disk test suites.
package corpus

import (
	"os"
	"path/filepath"
	"strings"

	appErr "github.com/amitnovick/compilation-ex3-testers/pkg/errors"
)

const inputExt = ".txt"

// TestCase identifies one corpus entry. The golden path is never stored; it
// is derived from the suite's expected dir and the bare id (see GoldenPath).
type TestCase struct {
	ID        string
	Category  string // subdirectory name, categorized suites only
	InputPath string
	Suite     string
}

// DisplayName returns the id prefixed with its category, for listings.
func (tc TestCase) DisplayName() string {
	if tc.Category == "" {
		return tc.ID
	}
	return tc.Category + "/" + tc.ID
}

// Suite describes one test corpus layout.
type Suite struct {
	Name        string
	InputsDir   string
	ExpectedDir string
	// Categorized suites group inputs into one level of category
	// subdirectories; goldens still live flat in ExpectedDir keyed by
	// bare id only.
	Categorized bool
}

// Enumerate walks the suite's inputs directory and returns its test cases in
// directory traversal order. Each call restarts the walk from scratch.
// A missing inputs directory yields an empty corpus, not an error: the
// extended suite is optional on many checkouts.
func (s Suite) Enumerate() ([]TestCase, error) {
	entries, err := os.ReadDir(s.InputsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, appErr.Wrapf(err, appErr.CorpusInvalid, "read suite %s inputs failed", s.Name)
	}

	if s.Categorized {
		return s.collectCategorized(entries)
	}
	return s.collectFlat(entries)
}

func (s Suite) collectFlat(entries []os.DirEntry) ([]TestCase, error) {
	var tests []TestCase
	seen := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() || !isInputFile(entry.Name()) {
			continue
		}
		id := bareID(entry.Name())
		if _, dup := seen[id]; dup {
			return nil, appErr.Newf(appErr.DuplicateTestCase, "suite %s: duplicate test id %s", s.Name, id)
		}
		seen[id] = struct{}{}
		tests = append(tests, TestCase{
			ID:        id,
			InputPath: filepath.Join(s.InputsDir, entry.Name()),
			Suite:     s.Name,
		})
	}
	return tests, nil
}

func (s Suite) collectCategorized(entries []os.DirEntry) ([]TestCase, error) {
	var tests []TestCase
	// Goldens are keyed by bare id regardless of category, so ids must be
	// unique across the whole suite, not just within one category.
	seen := make(map[string]string)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		category := entry.Name()
		categoryDir := filepath.Join(s.InputsDir, category)
		files, err := os.ReadDir(categoryDir)
		if err != nil {
			return nil, appErr.Wrapf(err, appErr.CorpusInvalid, "read suite %s category %s failed", s.Name, category)
		}
		for _, file := range files {
			if file.IsDir() || !isInputFile(file.Name()) {
				continue
			}
			id := bareID(file.Name())
			if prev, dup := seen[id]; dup {
				return nil, appErr.Newf(appErr.DuplicateTestCase,
					"suite %s: test id %s appears in categories %s and %s", s.Name, id, prev, category)
			}
			seen[id] = category
			tests = append(tests, TestCase{
				ID:        id,
				Category:  category,
				InputPath: filepath.Join(categoryDir, file.Name()),
				Suite:     s.Name,
			})
		}
	}
	return tests, nil
}

func isInputFile(name string) bool {
	return strings.HasSuffix(name, inputExt)
}

func bareID(name string) string {
	return strings.TrimSuffix(name, inputExt)
}
