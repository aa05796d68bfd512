package identifier

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BoundaryMarker replaces every non-alphanumeric character during
// normalization.
const BoundaryMarker = 'u'

// MinNumericWidth is the zero-padded width of purely numeric identifiers.
const MinNumericWidth = 3

var lower = cases.Lower(language.Und)

// Normalize converts raw text into a comparable identifier. The result only
// contains a-z, 0-9 and BoundaryMarker. Normalize is idempotent.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	lowered := lower.String(trimmed)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if isLowerAlnum(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(BoundaryMarker)
	}
	out := b.String()
	if IsNumeric(out) {
		return PadNumeric(out, MinNumericWidth)
	}
	return out
}

// IsNumeric reports whether value is non-empty and made only of ASCII digits.
func IsNumeric(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

// PadNumeric left-pads value with zeros to width. Longer values are returned
// unchanged.
func PadNumeric(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return strings.Repeat("0", width-len(value)) + value
}

// PaddingVariants returns the zero-padding equivalence class of a numeric
// identifier: the unpadded form, every padded form up to MinNumericWidth, and
// the identifier itself. Longest variants come first. Non-numeric input yields
// nil.
func PaddingVariants(id string) []string {
	if !IsNumeric(id) {
		return nil
	}
	base := strings.TrimLeft(id, "0")
	if base == "" {
		base = "0"
	}
	seen := make(map[string]struct{}, MinNumericWidth+1)
	variants := make([]string, 0, MinNumericWidth+1)
	add := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}
	add(id)
	for width := MinNumericWidth; width >= len(base); width-- {
		add(PadNumeric(base, width))
	}
	return variants
}

// StripMarkers removes every boundary marker from a normalized identifier.
func StripMarkers(id string) string {
	return strings.ReplaceAll(id, string(BoundaryMarker), "")
}

// HasDigit reports whether value contains an ASCII digit.
func HasDigit(value string) bool {
	return strings.ContainsAny(value, "0123456789")
}

// IsAlnum reports whether b is an ASCII letter or digit.
func IsAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isLowerAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
