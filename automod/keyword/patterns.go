package keyword

import (
	"fmt"
	"regexp"
)

// Default suspicious display-name patterns for raid detection: invite links
// and raw URLs are the classic raid-bot calling cards.
var DefaultSuspiciousPatterns = []string{
	`discord\.gg/[a-zA-Z0-9]+`,
	`https?://[^\s]+`,
}

// InvitePattern matches guild invite links in message bodies.
var InvitePattern = regexp.MustCompile(`(?i)(?:discord\.gg|discord(?:app)?\.com/invite)/[a-zA-Z0-9-]+`)

// URLPattern matches http(s) URLs in message bodies.
var URLPattern = regexp.MustCompile(`https?://[^\s<>]+`)

// Matches custom platform emoji tags (<:name:id> / <a:name:id>) plus the
// main unicode emoji block.
var EmojiPattern = regexp.MustCompile(`<a?:\w+:\d+>|[\x{1F300}-\x{1F9FF}]`)

// CountEmoji returns the number of emoji (custom tags or unicode) in text.
func CountEmoji(text string) int {
	return len(EmojiPattern.FindAllString(text, -1))
}

// CompilePatterns compiles a list of regular expression strings, failing on
// the first invalid one. Policy validation is expected to have happened at
// load time, so an error here usually means a host bug.
func CompilePatterns(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", expr, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// MatchesAny reports whether any of the compiled patterns matches text.
func MatchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
