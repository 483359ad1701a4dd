// Package voice prepares reply text for speech synthesis.
package voice

import (
	"regexp"
	"strings"
)

var (
	markupPattern = regexp.MustCompile("\\*\\*|__|\\*|_|~~|`")
	linkPattern   = regexp.MustCompile(`(https?://\S+)|(www\.\S+)|([a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}\S*)`)
	emojiPattern  = regexp.MustCompile(`[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}\x{2600}-\x{26FF}\x{2700}-\x{27BF}\x{1F900}-\x{1F9FF}\x{1FA70}-\x{1FAFF}]`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// Clean reduces reply text to something speakable: markdown emphasis
// markers, URLs and bare domain-like tokens, and pictographic emoji are
// stripped, and whitespace runs collapse to a single space. Clean is
// idempotent.
//
// The strip passes repeat until the text is stable: removing one class
// of token can splice the remainder into another ("x😀.co" becomes the
// domain token "x.co" once the emoji is gone), so a single pass over
// each pattern is not enough.
func Clean(raw string) string {
	cleaned := raw
	for {
		next := markupPattern.ReplaceAllString(cleaned, "")
		next = emojiPattern.ReplaceAllString(next, "")
		next = linkPattern.ReplaceAllString(next, "")
		if next == cleaned {
			break
		}
		cleaned = next
	}
	cleaned = spacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
