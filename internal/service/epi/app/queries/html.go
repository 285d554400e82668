package queries

import (
	"context"

	"github.com/brightleaf-health/epi-preprocessor/internal/htmlkit"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/domain"
)

// AnalyzeHTML works on a bare narrative fragment, not on a bundle.
type AnalyzeHTMLQuery struct {
	HTML string
}

type AnalyzeHTMLResult struct {
	Summary  htmlkit.StructureSummary
	Text     string
	Sections []htmlkit.FragmentSection
	Issues   []string
}

type AnalyzeHTMLQueryHandler interface {
	Handle(ctx context.Context, query AnalyzeHTMLQuery) (result AnalyzeHTMLResult, err error)
}

func NewAnalyzeHTMLQueryHandler(kit *htmlkit.Kit) AnalyzeHTMLQueryHandler {
	return &analyzeHTMLQueryHandler{kit: kit}
}

type analyzeHTMLQueryHandler struct {
	kit *htmlkit.Kit
}

func (h *analyzeHTMLQueryHandler) Handle(ctx context.Context, query AnalyzeHTMLQuery) (AnalyzeHTMLResult, error) {
	summary, err := h.kit.Summarize(query.HTML)
	if err != nil {
		return AnalyzeHTMLResult{}, err
	}
	text, err := h.kit.Text(query.HTML)
	if err != nil {
		return AnalyzeHTMLResult{}, err
	}
	sections, err := h.kit.StructuralSections(query.HTML)
	if err != nil {
		return AnalyzeHTMLResult{}, err
	}
	return AnalyzeHTMLResult{
		Summary:  summary,
		Text:     text,
		Sections: sections,
		Issues:   h.kit.ValidateXHTML(query.HTML),
	}, nil
}

// FindElements selects by class token or by tag name, exactly one of the
// two.
type FindElementsQuery struct {
	HTML  string
	Class string
	Tag   string
}

type FindElementsResult struct {
	Elements []htmlkit.Element
}

type FindElementsQueryHandler interface {
	Handle(ctx context.Context, query FindElementsQuery) (result FindElementsResult, err error)
}

func NewFindElementsQueryHandler(kit *htmlkit.Kit) FindElementsQueryHandler {
	return &findElementsQueryHandler{kit: kit}
}

type findElementsQueryHandler struct {
	kit *htmlkit.Kit
}

func (h *findElementsQueryHandler) Handle(ctx context.Context, query FindElementsQuery) (FindElementsResult, error) {
	switch {
	case query.Class != "" && query.Tag != "":
		return FindElementsResult{}, &domain.ValidationError{Subject: "element search", Issues: []string{"class and tag are mutually exclusive"}}
	case query.Class != "":
		elements, err := h.kit.FindByClass(query.HTML, query.Class)
		if err != nil {
			return FindElementsResult{}, err
		}
		return FindElementsResult{Elements: elements}, nil
	case query.Tag != "":
		elements, err := h.kit.FindByTag(query.HTML, query.Tag)
		if err != nil {
			return FindElementsResult{}, err
		}
		return FindElementsResult{Elements: elements}, nil
	default:
		return FindElementsResult{}, &domain.ValidationError{Subject: "element search", Issues: []string{"either class or tag is required"}}
	}
}
