package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TableHeader is the header line of the cms table format.
const TableHeader = "ID\tName\tProgramme\tMark\n"

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path, failing the test if it cannot.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// Table builds file content from data rows, prefixed with the header.
func Table(rows ...string) string {
	out := TableHeader
	for _, r := range rows {
		out += r + "\n"
	}
	return out
}
