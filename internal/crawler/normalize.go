package crawler

import (
	"regexp"
	"strings"
)

// Trailing comment-count decoration, e.g. "에어팟 프로 2 [42]"
var commentCountRe = regexp.MustCompile(`\[\d+\]\s*$`)

// CleanTitle strips the trailing bracketed comment count and surrounding
// whitespace. An empty result rejects the listing.
func CleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = commentCountRe.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}
