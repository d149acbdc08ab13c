package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/huandu/xstrings"
	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum   = regexp.MustCompile(`[^A-Za-z0-9]+`)
	camelSplit = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// RemoveAccents removes accents from a string, converting accented characters to their base forms
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SplitWords splits a string into words, handling camelCase, PascalCase, snake_case, and kebab-case
func SplitWords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	s = RemoveAccents(s)
	s = camelSplit.ReplaceAllString(s, "$1 $2")

	parts := nonAlnum.Split(s, -1)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// ToPascalCase converts a string to PascalCase, lowering the rest of every word.
// It is used for the synthetic names of anonymous schemas.
func ToPascalCase(s string) string {
	parts := SplitWords(s)
	if len(parts) == 0 {
		return ""
	}

	b := strings.Builder{}
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]))
		if len(p) > 1 {
			b.WriteString(strings.ToLower(p[1:]))
		}
	}
	return b.String()
}

// ToKebabCase converts a string to kebab-case
func ToKebabCase(s string) string {
	parts := SplitWords(s)
	if len(parts) == 0 {
		return ""
	}

	for i := range parts {
		parts[i] = strings.ToLower(parts[i])
	}
	return strings.Join(parts, "-")
}

// PascalIdentifier turns a name into a PascalCase identifier. Unlike ToPascalCase
// it keeps the casing inside words, so acronyms survive ("VMScaleSet" stays "VMScaleSet").
func PascalIdentifier(s string) string {
	parts := nonAlnum.Split(RemoveAccents(strings.TrimSpace(s)), -1)
	b := strings.Builder{}
	for _, p := range parts {
		if p != "" {
			b.WriteString(xstrings.FirstRuneToUpper(p))
		}
	}
	return b.String()
}

// CamelIdentifier turns a name into a camelCase identifier, lowering a leading
// acronym as a whole ("VMName" becomes "vmName", "ID" becomes "id").
func CamelIdentifier(s string) string {
	p := []rune(PascalIdentifier(s))
	upper := 0
	for upper < len(p) && unicode.IsUpper(p[upper]) {
		upper++
	}
	switch {
	case upper == 0:
	case upper == len(p) || upper == 1:
		for i := 0; i < upper; i++ {
			p[i] = unicode.ToLower(p[i])
		}
	default:
		// the last capital starts the next word
		for i := 0; i < upper-1; i++ {
			p[i] = unicode.ToLower(p[i])
		}
	}
	return string(p)
}

// UpperFirst upper-cases the first rune
func UpperFirst(s string) string {
	return xstrings.FirstRuneToUpper(s)
}

// LowerFirst lower-cases the first rune
func LowerFirst(s string) string {
	return xstrings.FirstRuneToLower(s)
}

// Singular returns the singular form of the last word of a name
func Singular(s string) string {
	return inflection.Singular(s)
}

// Plural returns the plural form of a name; names already ending in "s" are kept as they are
func Plural(s string) string {
	if s == "" || strings.HasSuffix(s, "s") || strings.HasSuffix(s, "S") {
		return s
	}
	return inflection.Plural(s)
}

// Fold returns the case-folded form of a name, for case-insensitive collision checks
func Fold(s string) string {
	return cases.Fold().String(s)
}
