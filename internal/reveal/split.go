// Package reveal streams assistant messages into the UI one paragraph at a
// time. The controller is a small state machine advanced by a timer: each
// tick appends the next segment until the whole message is visible.
package reveal

import (
	"regexp"
	"strings"
)

// paragraphBreak matches a run of two or more line breaks, allowing blank
// lines that only contain spaces, tabs or carriage returns.
var paragraphBreak = regexp.MustCompile(`\n(?:[ \t\r]*\n)+`)

// Split partitions text into ordered segments on paragraph breaks. Each
// separator stays attached to the segment before it and whitespace-only
// pieces are merged into a neighbour, so joining the segments always
// reproduces text exactly. Text without a paragraph break is one segment.
func Split(text string) []string {
	var segments []string
	start := 0
	for _, loc := range paragraphBreak.FindAllStringIndex(text, -1) {
		end := loc[1]
		if strings.TrimSpace(text[start:end]) == "" {
			continue
		}
		segments = append(segments, text[start:end])
		start = end
	}

	tail := text[start:]
	switch {
	case len(segments) == 0:
		segments = append(segments, text)
	case strings.TrimSpace(tail) == "":
		segments[len(segments)-1] += tail
	default:
		segments = append(segments, tail)
	}
	return segments
}
