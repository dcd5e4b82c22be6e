// Package utils holds naming helpers shared by the object and schema layers.
package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RemoveQuotes strips one pair of surrounding quote characters.
//
// Ids arriving through some query-argument literal syntaxes still carry
// their quotes, so "abc" (with the quotes) and abc resolve to the same key.
func RemoveQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// FormatName derives the root field name (camelCase) and the type name
// (PascalCase) for a component name.
//
//	FormatName("Position")     // "position", "Position"
//	FormatName("player_moves") // "playerMoves", "PlayerMoves"
func FormatName(name string) (fieldName, typeName string) {
	words := splitWords(name)
	if len(words) == 0 {
		return "", ""
	}

	// cases.Caser is stateful and must not be shared across goroutines.
	title := cases.Title(language.Und)

	var pascal strings.Builder
	for _, w := range words {
		pascal.WriteString(title.String(w))
	}
	typeName = pascal.String()

	var camel strings.Builder
	camel.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		camel.WriteString(title.String(w))
	}
	fieldName = camel.String()

	return fieldName, typeName
}

// ToSnakeCase translates a schema field name to its column name.
//
//	ToSnakeCase("classHash") // "class_hash"
func ToSnakeCase(name string) string {
	words := splitWords(name)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// splitWords breaks a name on separators and lower→upper case transitions.
// Runs of capitals stay together ("ID" is one word).
func splitWords(name string) []string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && len(current) > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()

	return words
}
