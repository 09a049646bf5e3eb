package keyword

import (
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^\pL\pN]+`)

// Takes an arbitrary string (eg, a display name or free-form text) and
// returns a version with all non-letter, non-digit characters removed, and
// all lower-case.
func Slugify(orig string) string {
	return strings.ToLower(nonSlugChars.ReplaceAllString(orig, ""))
}

// ContainsWord reports the first word from the list contained in the text,
// using case-insensitive substring matching. Returns "" when no word
// matches. Empty words never match.
func ContainsWord(text string, words []string) string {
	if len(words) == 0 {
		return ""
	}
	lower := strings.ToLower(text)
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if strings.Contains(lower, w) {
			return w
		}
	}
	return ""
}

// ContainsSlug is ContainsWord over slugified text: punctuation and spacing
// are stripped from both sides before matching, so "b.a.d w o r d" still
// hits "badword". Returns the original word from the list, or "".
func ContainsSlug(text string, words []string) string {
	if len(words) == 0 {
		return ""
	}
	slug := Slugify(text)
	if slug == "" {
		return ""
	}
	for _, w := range words {
		ws := Slugify(w)
		if ws == "" {
			continue
		}
		if strings.Contains(slug, ws) {
			return w
		}
	}
	return ""
}

// ParseWordList splits a comma- or newline-separated configuration string
// in to a cleaned word list, dropping empties.
func ParseWordList(raw string) []string {
	if raw == "" {
		return nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
