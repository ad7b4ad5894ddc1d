package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates the upload root (and any parents) if it does not exist.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// SafeJoin builds the on-disk path for an uploaded document. The name comes
// from a multipart form, so everything but its final path element is
// discarded to keep the file inside root.
func SafeJoin(root, name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	return filepath.Join(root, base)
}
