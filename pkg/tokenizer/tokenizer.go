package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Lower lower-cases text using Russian casing rules, which also cover Latin script.
func Lower(text string) string {
	return cases.Lower(language.Russian).String(text)
}

// IsWordRune reports whether r is kept by Clean: letters of any script
// (Cyrillic included), digits, combining marks and the underscore.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || r == '_'
}

// Clean lower-cases text and drops every rune that is neither a word rune nor whitespace.
// Punctuation is removed rather than replaced, so "пока-пока" becomes "покапока".
func Clean(text string) string {
	lowered := Lower(text)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if IsWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokenize converts text into lower-cased, punctuation-free tokens split on
// whitespace runs. Empty or whitespace-only input yields an empty slice.
func Tokenize(text string) []string {
	return strings.Fields(Clean(text))
}
