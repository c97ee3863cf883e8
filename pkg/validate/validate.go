// Package validate holds pure predicates used by entity constructors. None of
// them perform I/O or depend on locale or the clock.
package validate

import (
	"math"
	"regexp"
	"strings"
	"sync"
)

const digestLength = 64

// Display name length bounds, in characters.
const (
	DisplayNameMin = 3
	DisplayNameMax = 32
)

const displayNamePattern = `^[A-Za-z0-9_ ]{3,32}$`

// Digest reports whether s is a 64 character lowercase hex SHA-256 digest.
func Digest(s string) bool {
	if len(s) != digestLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Latitude reports whether v is a finite latitude in degrees.
func Latitude(v float64) bool {
	return isFinite(v) && v >= -90 && v <= 90
}

// Longitude reports whether v is a finite longitude in degrees.
func Longitude(v float64) bool {
	return isFinite(v) && v >= -180 && v <= 180
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Slug reports whether s is a non-empty, trimmed, lowercase ASCII slug made of
// letters, digits and hyphens.
func Slug(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}

// displayNameRegexp compiles the pattern on first use. A compile failure is
// kept and returned to every later caller.
var displayNameRegexp = sync.OnceValues(func() (*regexp.Regexp, error) {
	return regexp.Compile(displayNamePattern)
})

// DisplayName reports whether s matches the display name shape. The error is
// non-nil only when the pattern itself cannot be compiled.
func DisplayName(s string) (bool, error) {
	re, err := displayNameRegexp()
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}
