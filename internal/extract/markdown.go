package extract

import (
	"regexp"
	"strings"
)

var (
	fenceRe      = regexp.MustCompile("(?s)```.*?```")
	codeSpanRe   = regexp.MustCompile("`[^`\n]*`")
	imageRe      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	bareURLRe    = regexp.MustCompile(`https?://[^\s\)\]>]+`)
	headerMarkRe = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	listMarkRe   = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+[.)])\s+(?:\[[ xX]\]\s*)?`)
	emphasisRe   = regexp.MustCompile(`[*_~]{1,3}`)
	tableGlyphRe = regexp.MustCompile(`(?m)^\s*\||\|\s*$|\|`)
	tableRuleRe  = regexp.MustCompile(`(?m)^[\s|:-]+$`)
)

// StripMarkdown removes Markdown structure so the proper-noun pass sees
// plain prose: fenced code, code spans, link targets, images, heading
// and list markers, emphasis glyphs, table pipes, and bare URLs.
func StripMarkdown(text string) string {
	text = fenceRe.ReplaceAllString(text, " ")
	text = codeSpanRe.ReplaceAllString(text, " ")
	text = imageRe.ReplaceAllString(text, "$1")
	text = linkRe.ReplaceAllString(text, "$1")
	text = bareURLRe.ReplaceAllString(text, " ")
	text = headerMarkRe.ReplaceAllString(text, "")
	text = listMarkRe.ReplaceAllString(text, "")
	text = tableRuleRe.ReplaceAllString(text, " ")
	text = tableGlyphRe.ReplaceAllString(text, " ")
	text = emphasisRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
