package domain

import "encoding/json"

// UntitledSectionTitle is substituted in reports for sections that carry no
// title of their own.
const UntitledSectionTitle = "(untitled)"

// SectionHTML is one section's narrative as flattened out of the
// Composition tree. Level is the nesting depth, zero-based at the
// Composition's own section list.
type SectionHTML struct {
	Title          string          `json:"title"`
	Code           json.RawMessage `json:"code,omitempty"`
	HTML           string          `json:"html"`
	Level          int             `json:"level"`
	HasSubsections bool            `json:"has_subsections"`
}

// ContentReport aggregates every piece of narrative in a Composition:
// the Composition's own narrative plus a pre-order flattening of the
// section tree.
type ContentReport struct {
	CompositionHTML string        `json:"composition_html"`
	Sections        []SectionHTML `json:"sections"`
	TotalSections   int           `json:"total_sections"`
	MaxNestingLevel int           `json:"max_nesting_level"`
}

// SectionMarkdown is a section narrative converted to markdown.
type SectionMarkdown struct {
	Title    string `json:"title"`
	Level    int    `json:"level"`
	Markdown string `json:"markdown"`
}

// MarkdownReport is the markdown rendition of a Composition's content,
// ordered like ContentReport.
type MarkdownReport struct {
	CompositionMarkdown string            `json:"composition_markdown,omitempty"`
	Sections            []SectionMarkdown `json:"sections"`
}
