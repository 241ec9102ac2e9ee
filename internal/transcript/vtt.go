package transcript

import (
	"regexp"
	"strings"
)

var inlineTagRe = regexp.MustCompile(`<[^>]*>`)

// ParseVTT strips a WebVTT subtitle body down to plain text: the WEBVTT
// header block, cue timing lines, bare cue indices and inline styling or
// karaoke-timestamp tags are removed, and consecutive duplicate lines (a
// quirk of auto-generated captions, which repeat each line in overlapping
// cues) are collapsed. Returns the text and the number of cues seen.
func ParseVTT(content string) (string, int) {
	var parts []string
	cues := 0
	prev := ""

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "WEBVTT") ||
			strings.HasPrefix(line, "Kind:") ||
			strings.HasPrefix(line, "Language:") ||
			strings.HasPrefix(line, "NOTE") ||
			strings.HasPrefix(line, "STYLE") {
			continue
		}
		if strings.Contains(line, "-->") {
			cues++
			continue
		}
		if isDigits(line) {
			continue
		}

		line = strings.TrimSpace(inlineTagRe.ReplaceAllString(line, ""))
		if line == "" || line == prev {
			continue
		}
		parts = append(parts, line)
		prev = line
	}

	return strings.Join(parts, " "), cues
}

// ParseSRT strips an SRT subtitle body the same way: indices and timing
// lines go, text stays.
func ParseSRT(content string) (string, int) {
	var parts []string
	cues := 0
	prev := ""

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isDigits(line) {
			continue
		}
		if strings.Contains(line, "-->") {
			cues++
			continue
		}
		if line == prev {
			continue
		}
		parts = append(parts, line)
		prev = line
	}

	return strings.Join(parts, " "), cues
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
