package narrative

import (
	"regexp"
	"strings"
)

// Fill replaces {name} placeholders in tmpl with values from fields.
// Unknown placeholders are left as written.
func Fill(tmpl string, fields map[string]string) string {
	pairs := make([]string, 0, len(fields)*2)
	for k, v := range fields {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var thinkBlock = regexp.MustCompile(`(?is)<think>.*?</think>`)

// Clean strips reasoning blocks, collapses whitespace and keeps at most
// maxWords words. A maxWords of zero keeps everything.
func Clean(text string, maxWords int) string {
	words := strings.Fields(thinkBlock.ReplaceAllString(text, ""))
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}
