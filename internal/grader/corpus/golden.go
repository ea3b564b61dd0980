package corpus

import "path/filepath"

const goldenSuffix = "_Expected_Output.txt"

// GoldenPath computes the golden file path for a bare test id. The rule is
// the same for both suites: categorized suites drop the category and key the
// golden by bare id inside one flat expected dir.
func GoldenPath(expectedDir, id string) string {
	return filepath.Join(expectedDir, id+goldenSuffix)
}
