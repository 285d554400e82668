package queries

import (
	"context"
	"encoding/json"

	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/adapters/fhir"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/domain"
)

type HTMLContentQuery struct {
	Bundle json.RawMessage
}

type HTMLContentResult struct {
	HTML string
}

type HTMLContentQueryHandler interface {
	Handle(ctx context.Context, query HTMLContentQuery) (result HTMLContentResult, err error)
}

func NewHTMLContentQueryHandler(content *fhir.ContentManager) HTMLContentQueryHandler {
	return &htmlContentQueryHandler{content: content}
}

type htmlContentQueryHandler struct {
	content *fhir.ContentManager
}

func (h *htmlContentQueryHandler) Handle(ctx context.Context, query HTMLContentQuery) (HTMLContentResult, error) {
	epi, err := fhir.ParseBundle(query.Bundle)
	if err != nil {
		return HTMLContentResult{}, err
	}
	content, err := h.content.HTMLContent(epi.Composition())
	if err != nil {
		return HTMLContentResult{}, err
	}
	return HTMLContentResult{HTML: content}, nil
}

type ExtractAllContentQuery struct {
	Bundle json.RawMessage
}

type ExtractAllContentResult struct {
	Report domain.ContentReport
}

type ExtractAllContentQueryHandler interface {
	Handle(ctx context.Context, query ExtractAllContentQuery) (result ExtractAllContentResult, err error)
}

func NewExtractAllContentQueryHandler(content *fhir.ContentManager) ExtractAllContentQueryHandler {
	return &extractAllContentQueryHandler{content: content}
}

type extractAllContentQueryHandler struct {
	content *fhir.ContentManager
}

func (h *extractAllContentQueryHandler) Handle(ctx context.Context, query ExtractAllContentQuery) (ExtractAllContentResult, error) {
	epi, err := fhir.ParseBundle(query.Bundle)
	if err != nil {
		return ExtractAllContentResult{}, err
	}
	report, err := epi.AllHTMLContent(h.content)
	if err != nil {
		return ExtractAllContentResult{}, err
	}
	return ExtractAllContentResult{Report: report}, nil
}

type ExportMarkdownQuery struct {
	Bundle json.RawMessage
}

type ExportMarkdownResult struct {
	Report domain.MarkdownReport
}

type ExportMarkdownQueryHandler interface {
	Handle(ctx context.Context, query ExportMarkdownQuery) (result ExportMarkdownResult, err error)
}

func NewExportMarkdownQueryHandler(content *fhir.ContentManager) ExportMarkdownQueryHandler {
	return &exportMarkdownQueryHandler{content: content}
}

type exportMarkdownQueryHandler struct {
	content *fhir.ContentManager
}

func (h *exportMarkdownQueryHandler) Handle(ctx context.Context, query ExportMarkdownQuery) (ExportMarkdownResult, error) {
	epi, err := fhir.ParseBundle(query.Bundle)
	if err != nil {
		return ExportMarkdownResult{}, err
	}
	report, err := h.content.ExportMarkdown(epi.Composition())
	if err != nil {
		return ExportMarkdownResult{}, err
	}
	return ExportMarkdownResult{Report: report}, nil
}
