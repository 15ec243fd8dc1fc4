package patch

import "strings"

// ReplaceIdentifier replaces every whole-token occurrence of old with repl.
// A token boundary is any character that cannot appear in a JavaScript
// identifier, so "OpaqueTokenFactory" is left alone when replacing "OpaqueToken".
// It returns the new content and the number of replacements.
func ReplaceIdentifier(src, old, repl string) (string, int) {
	if old == "" {
		return src, 0
	}
	var b strings.Builder
	count := 0
	rest := src
	offset := 0
	for {
		i := strings.Index(rest, old)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(old)
		if (start == 0 || !isIdentChar(src[start-1])) && (end == len(src) || !isIdentChar(src[end])) {
			b.WriteString(src[offset:start])
			b.WriteString(repl)
			count++
		} else {
			b.WriteString(src[offset:end])
		}
		offset = end
		rest = src[offset:]
	}
	if count == 0 {
		return src, 0
	}
	b.WriteString(src[offset:])
	return b.String(), count
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}
