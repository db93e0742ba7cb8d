package resume

import (
	"regexp"
	"strings"
	"unicode"
)

// Segmentation mode names accepted by SegmenterFor.
const (
	ModeSplit  = "split"
	ModePrefix = "prefix"
)

// Segmenter partitions resume text into labeled sections.
type Segmenter interface {
	Segment(text string) Sections
}

// headerPattern matches any section keyword as a whole word. It is built
// from Headers so both segmenters share one vocabulary.
var headerPattern = func() *regexp.Regexp {
	alts := make([]string, len(Headers))
	for i, h := range Headers {
		alts[i] = regexp.QuoteMeta(string(h))
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(alts, "|") + `)\b`)
}()

// SplitSegmenter splits the raw text at every header keyword, wherever it
// occurs, and pairs each header with the text up to the next one. It copes
// with extractors that lose line boundaries around headers.
type SplitSegmenter struct{}

func (SplitSegmenter) Segment(text string) Sections {
	sections := Sections{}
	matches := headerPattern.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		sec, ok := sectionFor(text[m[2]:m[3]])
		if !ok {
			continue
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		// A repeated header replaces the earlier block.
		sections[sec] = Normalize(text[m[1]:end])
	}
	return sections
}

// PrefixSegmenter scans normalized lines and opens a section whenever a line
// starts with a header keyword.
type PrefixSegmenter struct{}

func (PrefixSegmenter) Segment(text string) Sections {
	sections := Sections{}
	var current Section
	for _, line := range Normalize(text) {
		if sec, ok := headerPrefix(line); ok {
			current = sec
			sections[sec] = nil
			continue
		}
		if current == "" {
			continue
		}
		sections[current] = append(sections[current], line)
	}
	return sections
}

// headerPrefix reports whether line begins with a whole header keyword.
func headerPrefix(line string) (Section, bool) {
	up := strings.ToUpper(line)
	for _, h := range Headers {
		if !strings.HasPrefix(up, string(h)) {
			continue
		}
		rest := up[len(h):]
		if rest == "" {
			return h, true
		}
		r := []rune(rest)[0]
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return h, true
		}
	}
	return "", false
}
