package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"testing"
)

// GenerateTestKeyFile creates a temporary record file with numLines
// "key payload" lines, keys drawn from [0, maxKey] with a fixed seed.
// A comment header and a blank line are included to exercise skipping.
// Returns the file path and a cleanup function.
func GenerateTestKeyFile(t testing.TB, numLines int, maxKey uint32) (string, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test_keys_*.txt")
	if err != nil {
		t.Fatalf("Failed to create temp key file: %v", err)
	}

	r := rand.New(rand.NewSource(int64(numLines)))
	var content strings.Builder
	content.WriteString("# generated test records\n\n")
	for i := 0; i < numLines; i++ {
		key := r.Int63n(int64(maxKey) + 1)
		fmt.Fprintf(&content, "%d record-%d\n", key, i)
	}

	if _, err := tmpFile.WriteString(content.String()); err != nil {
		t.Fatalf("Failed to write to temp key file: %v", err)
	}

	tmpFile.Close()

	cleanup := func() {
		os.Remove(tmpFile.Name())
	}

	return tmpFile.Name(), cleanup
}

// TempFilePath returns a cross-platform temporary file path
// with the given pattern. Does not create the file.
func TempFilePath(t testing.TB, pattern string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	path := tmpFile.Name()
	tmpFile.Close()
	os.Remove(path) // Remove immediately, just need the path

	return path
}
