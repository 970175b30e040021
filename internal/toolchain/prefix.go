package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
)

// prefixLinks are created relative to the prefix root. "usr" and "local"
// alias the root itself so builds installing to /usr or /usr/local land in
// the sandbox; lib64 points at lib for crates that only search lib.
var prefixLinks = []struct{ name, target string }{
	{"usr", "."},
	{"local", "."},
	{"lib64", "lib"},
}

// EnsurePrefix creates the install prefix layout. It is a no-op for the
// parts that already exist.
func EnsurePrefix(prefix string) error {
	for _, dir := range []string{
		prefix,
		filepath.Join(prefix, "include"),
		filepath.Join(prefix, "lib", "pkgconfig"),
		filepath.Join(prefix, "share", "pkgconfig"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create prefix directory %s: %w", dir, err)
		}
	}

	for _, link := range prefixLinks {
		path := filepath.Join(prefix, link.name)
		if _, err := os.Lstat(path); err == nil {
			continue
		}
		if err := os.Symlink(link.target, path); err != nil {
			return fmt.Errorf("failed to create prefix alias %s: %w", path, err)
		}
	}
	return nil
}
