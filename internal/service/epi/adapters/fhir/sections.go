package fhir

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brightleaf-health/epi-preprocessor/internal/htmlkit"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/domain"
	fhirmodel "github.com/brightleaf-health/epi-preprocessor/internal/service/epi/adapters/fhir/model"
)

// DefaultMaxSectionDepth bounds section recursion when no explicit limit
// is configured. Real ePI documents nest a handful of levels; the bound
// only exists to fail cleanly on pathological trees.
const DefaultMaxSectionDepth = 64

// Narrative status written when an update has to create the text node.
const narrativeStatusExtensions = "extensions"

// ContentManager reads and rewrites the narrative content of a Composition
// and its section tree.
type ContentManager struct {
	kit      *htmlkit.Kit
	maxDepth int
}

// NewContentManager builds a manager with the given nesting bound. A
// non-positive maxDepth selects DefaultMaxSectionDepth.
func NewContentManager(kit *htmlkit.Kit, maxDepth int) *ContentManager {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxSectionDepth
	}
	return &ContentManager{kit: kit, maxDepth: maxDepth}
}

// HTMLContent returns the Composition's own narrative.
func (m *ContentManager) HTMLContent(comp *fhirmodel.Composition) (string, error) {
	if comp.Text == nil || strings.TrimSpace(comp.Text.Div) == "" {
		return "", fmt.Errorf("composition narrative: %w", domain.ErrMissingContent)
	}
	return comp.Text.Div, nil
}

// SetHTMLContent replaces the Composition's narrative, creating the text
// node when absent. An existing status is left alone. The fragment must
// pass the XHTML scan; section updates are not checked this way, only the
// document-level narrative is.
func (m *ContentManager) SetHTMLContent(comp *fhirmodel.Composition, content string) error {
	if issues := m.kit.ValidateXHTML(content); len(issues) > 0 {
		return &domain.ValidationError{Subject: "narrative content", Issues: issues}
	}
	if comp.Text == nil {
		comp.Text = &fhirmodel.Narrative{Status: narrativeStatusExtensions}
	}
	comp.Text.Div = content
	return nil
}

// ExtractAll flattens every narrative in the Composition: its own text
// plus each section's div, pre-order through the section tree.
func (m *ContentManager) ExtractAll(comp *fhirmodel.Composition) (domain.ContentReport, error) {
	var report domain.ContentReport
	if comp.Text != nil {
		report.CompositionHTML = comp.Text.Div
	}
	if err := m.collect(comp.Section, 0, &report.Sections); err != nil {
		return domain.ContentReport{}, err
	}
	report.TotalSections = len(report.Sections)
	for _, s := range report.Sections {
		if s.Level > report.MaxNestingLevel {
			report.MaxNestingLevel = s.Level
		}
	}
	return report, nil
}

// ExtractSections runs the same walk over a bare section slice, for
// sub-tree queries.
func (m *ContentManager) ExtractSections(sections []*fhirmodel.Section) ([]domain.SectionHTML, error) {
	var out []domain.SectionHTML
	if err := m.collect(sections, 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *ContentManager) collect(sections []*fhirmodel.Section, level int, out *[]domain.SectionHTML) error {
	if len(sections) == 0 {
		return nil
	}
	if level >= m.maxDepth {
		return &domain.DepthError{Limit: m.maxDepth}
	}
	for _, s := range sections {
		if s == nil {
			continue
		}
		rec := domain.SectionHTML{
			Title:          s.Title,
			Code:           s.Code,
			Level:          level,
			HasSubsections: len(s.Section) > 0,
		}
		if rec.Title == "" {
			rec.Title = domain.UntitledSectionTitle
		}
		if s.Text != nil {
			rec.HTML = s.Text.Div
		}
		*out = append(*out, rec)
		if err := m.collect(s.Section, level+1, out); err != nil {
			return err
		}
	}
	return nil
}

// UpdateSection rewrites the narrative of the first section whose title
// exactly equals title. All siblings of a level are tried before any
// child, so a shallower match always wins over a deeper one; the matched
// section's own children are not searched. Without recursive only the top
// level is considered.
func (m *ContentManager) UpdateSection(comp *fhirmodel.Composition, title, content string, recursive bool) error {
	return m.UpdateSections(comp.Section, title, content, recursive)
}

// UpdateSections is UpdateSection over a bare section slice.
func (m *ContentManager) UpdateSections(sections []*fhirmodel.Section, title, content string, recursive bool) error {
	return m.updateIn(sections, title, content, recursive, 0)
}

func (m *ContentManager) updateIn(sections []*fhirmodel.Section, title, content string, recursive bool, level int) error {
	if len(sections) == 0 {
		return &domain.NotFoundError{Resource: "section", Key: title}
	}
	if level >= m.maxDepth {
		return &domain.DepthError{Limit: m.maxDepth}
	}
	for _, s := range sections {
		if s == nil || s.Title != title {
			continue
		}
		if s.Text == nil {
			s.Text = &fhirmodel.Narrative{Status: narrativeStatusExtensions}
		}
		s.Text.Div = content
		return nil
	}
	if !recursive {
		return &domain.NotFoundError{Resource: "section", Key: title}
	}
	for _, s := range sections {
		if s == nil {
			continue
		}
		err := m.updateIn(s.Section, title, content, recursive, level+1)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	return &domain.NotFoundError{Resource: "section", Key: title}
}

// ExportMarkdown converts the Composition narrative and every section
// narrative to markdown, in extraction order.
func (m *ContentManager) ExportMarkdown(comp *fhirmodel.Composition) (domain.MarkdownReport, error) {
	extracted, err := m.ExtractAll(comp)
	if err != nil {
		return domain.MarkdownReport{}, err
	}
	var report domain.MarkdownReport
	if extracted.CompositionHTML != "" {
		converted, err := m.kit.Markdown(extracted.CompositionHTML)
		if err != nil {
			return domain.MarkdownReport{}, err
		}
		report.CompositionMarkdown = converted
	}
	for _, sec := range extracted.Sections {
		converted, err := m.kit.Markdown(sec.HTML)
		if err != nil {
			return domain.MarkdownReport{}, err
		}
		report.Sections = append(report.Sections, domain.SectionMarkdown{
			Title:    sec.Title,
			Level:    sec.Level,
			Markdown: converted,
		})
	}
	return report, nil
}

// ReplaceSpan swaps the span between the first occurrence of startMarker
// and the first occurrence of endMarker after it, markers included, for
// replacement.
func ReplaceSpan(content, startMarker, endMarker, replacement string) (string, error) {
	if startMarker == "" || endMarker == "" {
		return "", &domain.ValidationError{Subject: "span markers", Issues: []string{"markers must not be empty"}}
	}
	i := strings.Index(content, startMarker)
	if i < 0 {
		return "", &domain.MarkerError{Marker: startMarker}
	}
	rest := i + len(startMarker)
	j := strings.Index(content[rest:], endMarker)
	if j < 0 {
		return "", &domain.MarkerError{Marker: endMarker}
	}
	end := rest + j + len(endMarker)
	return content[:i] + replacement + content[end:], nil
}
