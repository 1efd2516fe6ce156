package document

import (
	"regexp"
	"strings"
)

// DefaultSections is the allow-list of section identifiers relevant to
// financial metric extraction from a 10-K filing.
var DefaultSections = []string{
	"item 7",
	"item 8",
	"financial statements",
	"consolidated statements",
	"segment information",
	"balance sheet",
	"income statement",
	"cash flow",
}

// headingPattern matches 10-K item headings and consolidated statement
// titles at the start of a line.
var headingPattern = regexp.MustCompile(`(?mi)^[ \t]*(item[ \t]+\d+[a-z]?\b.{0,120}|consolidated[ \t]+(?:balance[ \t]+sheets?|statements?[ \t]+of[ \t]+[a-z ,]+))[ \t]*\r?$`)

// SectionSplitter partitions a document by recognizable section headings,
// retains only sections matching its allow-list, and windows each retained
// section with a token splitter. Table markup inside sections is kept
// verbatim. Segments carry the matched section identifier as a tag.
type SectionSplitter struct {
	Sections []string
	window   *TokenSplitter
}

// NewSectionSplitter creates a structure-aware splitter. If no sections
// are given, DefaultSections is used.
func NewSectionSplitter(window *TokenSplitter, sections ...string) *SectionSplitter {
	if len(sections) == 0 {
		sections = DefaultSections
	}
	lowered := make([]string, len(sections))
	for i, s := range sections {
		lowered[i] = strings.ToLower(s)
	}
	return &SectionSplitter{
		Sections: lowered,
		window:   window,
	}
}

// Split returns windowed segments for every allow-listed section found in
// the text. It returns no segments (and no error) when the text contains
// no matching sections; callers decide how to fall back.
func (ss *SectionSplitter) Split(text string) ([]Segment, error) {
	if text == "" {
		return nil, nil
	}

	headings := headingPattern.FindAllStringIndex(text, -1)
	if len(headings) == 0 {
		return nil, nil
	}

	var segments []Segment
	for i, loc := range headings {
		sectionStart := loc[0]
		sectionEnd := len(text)
		if i+1 < len(headings) {
			sectionEnd = headings[i+1][0]
		}

		tag := ss.matchSection(text[loc[0]:loc[1]], text[sectionStart:sectionEnd])
		if tag == "" {
			continue
		}

		windowed, err := ss.window.Split(text[sectionStart:sectionEnd])
		if err != nil {
			return nil, err
		}
		for _, seg := range windowed {
			segments = append(segments, Segment{
				Text:    seg.Text,
				Offset:  sectionStart + seg.Offset,
				Section: tag,
			})
		}
	}

	return segments, nil
}

// matchSection returns the allow-list entry the section matches, or "".
// The heading is checked first; the leading part of the body catches
// statement titles that sit below a generic item heading.
func (ss *SectionSplitter) matchSection(heading, body string) string {
	heading = strings.ToLower(heading)
	lead := body
	if len(lead) > 400 {
		lead = lead[:400]
	}
	lead = strings.ToLower(lead)

	for _, keyword := range ss.Sections {
		if strings.Contains(heading, keyword) {
			return keyword
		}
	}
	for _, keyword := range ss.Sections {
		if strings.Contains(lead, keyword) {
			return keyword
		}
	}
	return ""
}
