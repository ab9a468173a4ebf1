package sqlgen

import "strings"

// Path tokens are stored brace-delimited, e.g. "{/a/b.jar} {/c/d.pom}".
const (
	tokenStart = "(^|{)"
	tokenEnd   = "(}|$)"
)

// RewritePathRegex rewrites a user pattern so that, unless anchored, it must
// match a whole path token:
//
//	woof       ->  (^|{)(woof)(}|$)
//	woof$      ->  (^|{)(woof)(}|$)
//	^woof$     ->  (^|{)woof(}|$)
//	^woof      ->  (^|{)woof
//
// Only the two ends of the pattern are examined; alternations are not wrapped
// individually. A trailing "$" on its own changes nothing while a leading "^"
// on its own drops the closing boundary. Degenerate inputs such as "" or "^$"
// go through the same rules.
func RewritePathRegex(pattern string) string {
	anchoredStart := strings.HasPrefix(pattern, "^")
	anchoredEnd := strings.HasSuffix(pattern, "$")

	switch {
	case anchoredStart && anchoredEnd:
		return tokenStart + pattern[1:len(pattern)-1] + tokenEnd
	case anchoredStart:
		return tokenStart + pattern[1:]
	default:
		return tokenStart + "(" + strings.TrimSuffix(pattern, "$") + ")" + tokenEnd
	}
}
