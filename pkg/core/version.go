package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the format version a document was written under.
//
// Versions are plain integers. Dotted versions "a.b.c" from older files
// are folded into a*10000 + b*100 + c, so "0.3.8" equals 308.
type Version int64

// MaxVersion is larger than any version a document can declare.
const MaxVersion Version = 1<<63 - 1

// ParseVersion parses an integer or dotted version string.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty version")
	}
	if !strings.Contains(s, ".") {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid version %q", s)
		}
		return Version(n), nil
	}

	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid version %q: too many components", s)
	}
	var v int64
	for i := 0; i < 3; i++ {
		v *= 100
		if i >= len(parts) {
			continue
		}
		n, err := strconv.ParseInt(parts[i], 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid version %q", s)
		}
		if i > 0 && n > 99 {
			return 0, fmt.Errorf("invalid version %q: component %d out of range", s, i+1)
		}
		v += n
	}
	return Version(v), nil
}

// String returns the integer form written by the writer.
func (v Version) String() string {
	return strconv.FormatInt(int64(v), 10)
}

// Dotted returns the "a.b.c" form of the version.
func (v Version) Dotted() string {
	n := int64(v)
	return fmt.Sprintf("%d.%d.%d", n/10000, n/100%100, n%100)
}

// CheckVersion returns an UnsupportedVersionError when v cannot be
// interpreted by a binary that understands versions up to max.
func CheckVersion(v, max Version) error {
	if v < 0 || v > max {
		return &UnsupportedVersionError{Version: v, Max: max}
	}
	return nil
}
