package util

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// PathPattern lays out sink files below the sink directory. Placeholders:
//   - {year}, {month}, {day} - date of the upload, zero padded
//   - {name}     - sanitised file stem
//   - {ext}      - extension with leading dot
//   - {filename} - {name}{ext}
//
// "{year}/{month}/{filename}" turns clip.mp4 into "2026/01/clip.mp4".
type PathPattern struct {
	pattern string
}

func NewPathPattern(pattern string) *PathPattern {
	return &PathPattern{pattern: pattern}
}

// Generate expands the pattern. A zero timestamp leaves date placeholders untouched.
func (p *PathPattern) Generate(name string, timestamp time.Time, ext string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	pairs := []string{
		"{name}", name,
		"{ext}", ext,
		"{filename}", name + ext,
	}
	if !timestamp.IsZero() {
		pairs = append(pairs,
			"{year}", fmt.Sprintf("%04d", timestamp.Year()),
			"{month}", fmt.Sprintf("%02d", timestamp.Month()),
			"{day}", fmt.Sprintf("%02d", timestamp.Day()),
		)
	}

	return filepath.Clean(strings.NewReplacer(pairs...).Replace(p.pattern)), nil
}

// DefaultSinkPattern keeps files flat in the sink directory, as the processing
// server expects to find inputs by their plain name.
func DefaultSinkPattern() *PathPattern {
	return NewPathPattern("{filename}")
}
