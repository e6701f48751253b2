package notifiers

import (
	"strings"
	"unicode/utf8"
)

// splitMessage cuts body into chunks of at most limit characters, preferring
// the blank lines between timeslot blocks as cut points.
func splitMessage(body string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(body) <= limit {
		return []string{body}
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, block := range strings.SplitAfter(body, "\n\n") {
		if block == "" {
			continue
		}
		n := utf8.RuneCountInString(block)
		if curLen+n > limit {
			flush()
		}
		for n > limit {
			runes := []rune(block)
			chunks = append(chunks, string(runes[:limit]))
			block = string(runes[limit:])
			n -= limit
		}
		cur.WriteString(block)
		curLen += n
	}
	flush()

	return chunks
}
