package resume

import (
	"regexp"
	"strings"
	"unicode"
)

// PersonalInfo holds contact details. A field is set only when its label
// matched; Fields carries the key/value lines of documents that do not use
// the labeled style.
type PersonalInfo struct {
	Name     string            `json:"name,omitempty"`
	Email    string            `json:"email,omitempty"`
	Phone    string            `json:"phone,omitempty"`
	LinkedIn string            `json:"linkedin,omitempty"`
	GitHub   string            `json:"github,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

var (
	nameRe     = regexp.MustCompile(`(?i)Name:\s*(.+?)(?:Email:|Phone:|$)`)
	emailRe    = regexp.MustCompile(`(?i)Email:\s*(\S+)`)
	phoneRe    = regexp.MustCompile(`(?i)Phone:\s*([+\d\-\s()]+)`)
	linkedInRe = regexp.MustCompile(`(?i)LinkedIn:\s*(\S+)`)
	gitHubRe   = regexp.MustCompile(`(?i)GitHub:\s*(\S+)`)
)

// ExtractPersonal reads contact fields from the personal section. The lines
// are joined into one run and searched label by label; when no label
// matches, the lines are read as "Key: Value" pairs instead.
func ExtractPersonal(lines []string) *PersonalInfo {
	info := ExtractLabeled(lines)
	if info.empty() {
		info.Fields = ExtractKeyValues(lines)
	}
	return info
}

// ExtractLabeled applies the labeled-run rules only.
func ExtractLabeled(lines []string) *PersonalInfo {
	text := strings.Map(foldSpace, strings.Join(lines, " "))
	return &PersonalInfo{
		Name:     firstGroup(nameRe, text),
		Email:    firstGroup(emailRe, text),
		Phone:    firstGroup(phoneRe, text),
		LinkedIn: firstGroup(linkedInRe, text),
		GitHub:   firstGroup(gitHubRe, text),
	}
}

// ExtractKeyValues maps every "Key: Value" line to an entry keyed by the
// trimmed label. Later duplicates win; lines without a colon, an empty key
// or an empty value are skipped.
func ExtractKeyValues(lines []string) map[string]string {
	var fields map[string]string
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		if fields == nil {
			fields = make(map[string]string)
		}
		fields[key] = value
	}
	return fields
}

func (p *PersonalInfo) empty() bool {
	return p.Name == "" && p.Email == "" && p.Phone == "" &&
		p.LinkedIn == "" && p.GitHub == "" && len(p.Fields) == 0
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// foldSpace turns any Unicode space (such as the no-break spaces common in
// PDF text) into ' ', since the label patterns only know ASCII whitespace.
func foldSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return ' '
	}
	return r
}
