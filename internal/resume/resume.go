// Package resume turns resume text into structured fields: the text is
// normalized into lines, segmented into the fixed sections and each section
// is handed to its field extractor.
package resume

import "encoding/json"

// Resume is the structured result of a parse. Only detected sections are
// populated; use Has to tell a missing section from an empty one.
type Resume struct {
	Personal       *PersonalInfo
	Education      []EducationEntry
	WorkExperience []WorkExperienceEntry
	Skills         []string
	Projects       []string
	RawText        string

	found sectionSet
}

// Has reports whether sec was detected in the source text.
func (r *Resume) Has(sec Section) bool {
	return r.found.has(sec)
}

// Parser runs the normalize, segment and extract stages. A Parser holds no
// per-call state and may be shared between goroutines.
type Parser struct {
	segmenter Segmenter
}

// Option configures a Parser.
type Option func(*Parser)

// WithSegmenter replaces the default split segmenter.
func WithSegmenter(s Segmenter) Option {
	return func(p *Parser) {
		if s != nil {
			p.segmenter = s
		}
	}
}

// NewParser builds a Parser. Without options it uses SplitSegmenter.
func NewParser(opts ...Option) *Parser {
	p := &Parser{segmenter: SplitSegmenter{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse parses text with the default parser.
func Parse(text string) *Resume {
	return defaultParser.Parse(text)
}

// Parse never fails: undetected sections and unmatched fields are left out.
func (p *Parser) Parse(text string) *Resume {
	res := &Resume{RawText: text}
	sections := p.segmenter.Segment(text)

	if lines, ok := sections.Lookup(PersonalInformation); ok {
		res.Personal = ExtractPersonal(lines)
		res.found.add(PersonalInformation)
	}
	if lines, ok := sections.Lookup(Education); ok {
		res.Education = ExtractEducation(lines)
		res.found.add(Education)
	}
	if lines, ok := sections.Lookup(WorkExperience); ok {
		res.WorkExperience = ExtractWorkExperience(lines)
		res.found.add(WorkExperience)
	}
	if lines, ok := sections.Lookup(Skills); ok {
		res.Skills = passThrough(lines)
		res.found.add(Skills)
	}
	if lines, ok := sections.Lookup(Projects); ok {
		res.Projects = passThrough(lines)
		res.found.add(Projects)
	}
	return res
}

func passThrough(lines []string) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}

// resumeJSON is the wire form. Pointer fields keep detected-but-empty
// sections in the output while omitting undetected ones.
type resumeJSON struct {
	Personal       *PersonalInfo          `json:"personal,omitempty"`
	Education      *[]EducationEntry      `json:"education,omitempty"`
	WorkExperience *[]WorkExperienceEntry `json:"work_experience,omitempty"`
	Experience     *[]WorkExperienceEntry `json:"experience,omitempty"`
	Skills         *[]string              `json:"skills,omitempty"`
	Projects       *[]string              `json:"projects,omitempty"`
	RawText        string                 `json:"raw_text"`
}

func (r Resume) MarshalJSON() ([]byte, error) {
	w := resumeJSON{RawText: r.RawText}
	if r.found.has(PersonalInformation) {
		w.Personal = r.Personal
		if w.Personal == nil {
			w.Personal = &PersonalInfo{}
		}
	}
	if r.found.has(Education) {
		w.Education = nonNil(r.Education)
	}
	if r.found.has(WorkExperience) {
		w.WorkExperience = nonNil(r.WorkExperience)
	}
	if r.found.has(Skills) {
		w.Skills = nonNil(r.Skills)
	}
	if r.found.has(Projects) {
		w.Projects = nonNil(r.Projects)
	}
	return json.Marshal(w)
}

func (r *Resume) UnmarshalJSON(data []byte) error {
	var w resumeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Resume{RawText: w.RawText}
	if w.Personal != nil {
		r.Personal = w.Personal
		r.found.add(PersonalInformation)
	}
	if w.Education != nil {
		r.Education = *nonNil(*w.Education)
		r.found.add(Education)
	}
	work := w.WorkExperience
	if work == nil {
		work = w.Experience
	}
	if work != nil {
		r.WorkExperience = *nonNil(*work)
		r.found.add(WorkExperience)
	}
	if w.Skills != nil {
		r.Skills = *nonNil(*w.Skills)
		r.found.add(Skills)
	}
	if w.Projects != nil {
		r.Projects = *nonNil(*w.Projects)
		r.found.add(Projects)
	}
	return nil
}

func nonNil[T any](s []T) *[]T {
	if s == nil {
		s = []T{}
	}
	return &s
}
