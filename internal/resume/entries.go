package resume

import (
	"regexp"
	"strings"
)

// EducationEntry is one institution block. Institution is empty for lines
// that appeared before any institution line.
type EducationEntry struct {
	Institution string   `json:"institution,omitempty"`
	Details     []string `json:"details,omitempty"`
}

// HasInstitution reports whether the entry was opened by an institution line.
func (e EducationEntry) HasInstitution() bool { return e.Institution != "" }

// WorkExperienceEntry is one position: a "Company, Title ... Dates" header
// followed by its bullet lines. Header is empty for leading bullets.
type WorkExperienceEntry struct {
	Header  string   `json:"header,omitempty"`
	Bullets []string `json:"bullets"`
}

// HasHeader reports whether the entry was opened by a header line.
func (e WorkExperienceEntry) HasHeader() bool { return e.Header != "" }

var yearRe = regexp.MustCompile(`\p{Nd}{4}`)

// IsInstitutionLine reports whether line opens a new education entry. The
// "College" check stands alone and does not require a comma.
func IsInstitutionLine(line string) bool {
	return (strings.Contains(line, ",") && strings.Contains(line, "University")) ||
		strings.Contains(line, "College")
}

// IsPositionHeader reports whether line opens a new work entry: it carries
// a four-digit year and a comma.
func IsPositionHeader(line string) bool {
	return yearRe.MatchString(line) && strings.Contains(line, ",")
}

// ExtractEducation groups education lines under their institutions.
func ExtractEducation(lines []string) []EducationEntry {
	return foldEntries(lines, IsInstitutionLine,
		func(header string) EducationEntry { return EducationEntry{Institution: header} },
		func(e *EducationEntry, line string) { e.Details = append(e.Details, line) },
	)
}

// ExtractWorkExperience groups work lines under their position headers.
func ExtractWorkExperience(lines []string) []WorkExperienceEntry {
	return foldEntries(lines, IsPositionHeader,
		func(header string) WorkExperienceEntry {
			return WorkExperienceEntry{Header: header, Bullets: []string{}}
		},
		func(e *WorkExperienceEntry, line string) { e.Bullets = append(e.Bullets, line) },
	)
}

// foldEntries walks lines with two states: no open entry, or one entry
// accumulating. A header line closes the open entry and opens a new one; any
// other line is added to the open entry, opening a header-less one (open
// called with "") if needed. The open entry is flushed at end of input.
func foldEntries[E any](lines []string, isHeader func(string) bool, open func(header string) E, add func(*E, string)) []E {
	entries := []E{}
	var current *E
	flush := func() {
		if current != nil {
			entries = append(entries, *current)
			current = nil
		}
	}
	for _, line := range lines {
		if isHeader(line) {
			flush()
			e := open(line)
			current = &e
			continue
		}
		if current == nil {
			e := open("")
			current = &e
		}
		add(current, line)
	}
	flush()
	return entries
}
