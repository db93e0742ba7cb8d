package resume

import (
	"errors"
	"fmt"
	"strings"
)

// Section is one of the fixed resume section labels.
type Section string

const (
	PersonalInformation Section = "PERSONAL INFORMATION"
	Education           Section = "EDUCATION"
	WorkExperience      Section = "WORK EXPERIENCE"
	Skills              Section = "SKILLS"
	Projects            Section = "PROJECTS"
)

// Headers lists every recognized section in canonical order.
var Headers = []Section{PersonalInformation, Education, WorkExperience, Skills, Projects}

// ErrUnknownMode is returned by SegmenterFor for an unrecognized mode name.
var ErrUnknownMode = errors.New("unknown segmentation mode")

// Sections maps a detected section to its content lines. A key is present
// only if its header appeared in the document.
type Sections map[Section][]string

// Lookup returns the lines of s and whether the section was detected.
func (m Sections) Lookup(s Section) ([]string, bool) {
	lines, ok := m[s]
	return lines, ok
}

// sectionFor maps a matched keyword (any case) to its canonical Section.
func sectionFor(token string) (Section, bool) {
	up := Section(strings.ToUpper(strings.TrimSpace(token)))
	for _, h := range Headers {
		if up == h {
			return h, true
		}
	}
	return "", false
}

// sectionSet records which sections were detected.
type sectionSet uint8

func (s sectionSet) has(sec Section) bool {
	return s&sectionBit(sec) != 0
}

func (s *sectionSet) add(sec Section) {
	*s |= sectionBit(sec)
}

func sectionBit(sec Section) sectionSet {
	for i, h := range Headers {
		if h == sec {
			return 1 << uint(i)
		}
	}
	return 0
}

// SegmenterFor returns the segmenter registered under mode.
func SegmenterFor(mode string) (Segmenter, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeSplit:
		return SplitSegmenter{}, nil
	case ModePrefix:
		return PrefixSegmenter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}
