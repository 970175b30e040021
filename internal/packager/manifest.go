package packager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/mpvbuild/internal/fsutil"
)

// ManifestFileName is written at the root of the dist tree.
const ManifestFileName = "MANIFEST.md"

// Entry is one file of the dist tree.
type Entry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Section lists the files of one crate on one platform.
type Section struct {
	Platform string  `json:"platform"`
	Crate    string  `json:"crate"`
	Files    []Entry `json:"files"`
}

// Manifest is an inventory of the dist tree as found on disk.
type Manifest struct {
	Sections []Section `json:"sections"`
}

// Files counts every listed file.
func (m Manifest) Files() int {
	n := 0
	for _, s := range m.Sections {
		n += len(s.Files)
	}
	return n
}

// Bytes sums the size of every listed file.
func (m Manifest) Bytes() int64 {
	var n int64
	for _, s := range m.Sections {
		for _, f := range s.Files {
			n += f.Size
		}
	}
	return n
}

// GenerateManifest walks distRoot and groups files by platform then crate.
// The ABI level of mobile platforms is detected from the layout, whatever
// the platform is called. A missing root yields an empty manifest.
func GenerateManifest(distRoot string) (Manifest, error) {
	sections := map[string]*Section{}

	err := filepath.WalkDir(distRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(distRoot, p)
		if err != nil {
			return err
		}
		// Artifacts sit at platform/crate/file, or platform/abi/crate/file
		// for mobile jobs. Anything else is not ours.
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 3 && len(parts) != 4 {
			return nil
		}

		n := len(parts)
		platform := path.Join(parts[:n-2]...)
		crate := parts[n-2]
		name := parts[n-1]

		info, err := d.Info()
		if err != nil {
			return err
		}

		key := platform + "\x00" + crate
		s, ok := sections[key]
		if !ok {
			s = &Section{Platform: platform, Crate: crate}
			sections[key] = s
		}
		s.Files = append(s.Files, Entry{Name: name, Size: info.Size()})
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Manifest{}, fmt.Errorf("failed to walk %s: %w", distRoot, err)
	}

	m := Manifest{Sections: make([]Section, 0, len(sections))}
	for _, s := range sections {
		sort.Slice(s.Files, func(i, j int) bool { return s.Files[i].Name < s.Files[j].Name })
		m.Sections = append(m.Sections, *s)
	}
	sort.Slice(m.Sections, func(i, j int) bool {
		if m.Sections[i].Platform != m.Sections[j].Platform {
			return m.Sections[i].Platform < m.Sections[j].Platform
		}
		return m.Sections[i].Crate < m.Sections[j].Crate
	})
	return m, nil
}

// Markdown renders the manifest as a document with one heading per
// platform and a table per crate.
func (m Manifest) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# Build Artifacts\n")

	if len(m.Sections) == 0 {
		sb.WriteString("\nNo artifacts.\n")
		return sb.String()
	}

	platform := ""
	for _, s := range m.Sections {
		if s.Platform != platform {
			platform = s.Platform
			fmt.Fprintf(&sb, "\n## %s\n", platform)
		}
		fmt.Fprintf(&sb, "\n### %s\n\n", s.Crate)
		sb.WriteString("| File | Size |\n|---|---:|\n")
		for _, f := range s.Files {
			fmt.Fprintf(&sb, "| %s | %s |\n", f.Name, HumanSize(f.Size))
		}
	}
	fmt.Fprintf(&sb, "\n%d files, %s total\n", m.Files(), HumanSize(m.Bytes()))
	return sb.String()
}

// WriteManifest regenerates the manifest of distRoot and stores it as MANIFEST.md.
func WriteManifest(distRoot string) (Manifest, error) {
	m, err := GenerateManifest(distRoot)
	if err != nil {
		return Manifest{}, err
	}
	if err := os.MkdirAll(distRoot, 0755); err != nil {
		return Manifest{}, fmt.Errorf("failed to create %s: %w", distRoot, err)
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(distRoot, ManifestFileName), []byte(m.Markdown()), 0644); err != nil {
		return Manifest{}, fmt.Errorf("failed to write manifest: %w", err)
	}
	return m, nil
}

// HumanSize formats a byte count with binary units.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
