package creator

import "strings"

const fence = "```"

// Sanitize extracts the specification from a model reply. The content of the
// first fenced block wins; a language tag on the opening fence is dropped and
// an unterminated block runs to the end of the text. Text without fences is
// only trimmed, so Sanitize is idempotent.
func Sanitize(s string) string {
	start := strings.Index(s, fence)
	if start < 0 {
		return strings.TrimSpace(s)
	}
	body := s[start+len(fence):]

	// A language tag occupies the rest of the opening fence line.
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		tag := strings.TrimSpace(body[:nl])
		if tag == "" || !strings.ContainsAny(tag, " \t:") {
			body = body[nl+1:]
		}
	}

	if end := strings.Index(body, fence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
