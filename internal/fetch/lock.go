package fetch

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/aretw0/mpvbuild/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// LockFileName is the trust-on-first-use record kept in the source directory.
const LockFileName = "sources.lock.yaml"

// LockEntry pins the revision a source resolved to the first time it was fetched.
type LockEntry struct {
	URL      string `yaml:"url"`
	Ref      string `yaml:"ref,omitempty"`
	Revision string `yaml:"revision"`
}

// LockFile maps recipe names to their pinned sources.
type LockFile struct {
	Sources map[string]LockEntry `yaml:"sources"`
}

// ReadLock loads a lock file. A missing file yields an empty lock.
func ReadLock(path string) (*LockFile, error) {
	lock := &LockFile{Sources: map[string]LockEntry{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return lock, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read lock file: %w", err)
	}
	if err := yaml.Unmarshal(data, lock); err != nil {
		return nil, fmt.Errorf("failed to parse lock file %s: %w", path, err)
	}
	if lock.Sources == nil {
		lock.Sources = map[string]LockEntry{}
	}
	return lock, nil
}

// Write stores the lock file atomically.
func (l *LockFile) Write(path string) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to encode lock file: %w", err)
	}
	return fsutil.WriteFileAtomic(path, data, 0644)
}

// Names lists the pinned sources, sorted.
func (l *LockFile) Names() []string {
	names := make([]string, 0, len(l.Sources))
	for name := range l.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
