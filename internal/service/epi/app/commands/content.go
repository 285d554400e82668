package commands

import (
	"context"
	"encoding/json"

	"github.com/brightleaf-health/epi-preprocessor/internal/htmlkit"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/adapters/fhir"
)

// BundleResult carries the re-serialized bundle after a successful edit.
type BundleResult struct {
	Bundle json.RawMessage
}

type UpdateHTMLContentCommand struct {
	Bundle json.RawMessage
	HTML   string
}

type UpdateHTMLContentHandler interface {
	Handle(ctx context.Context, cmd UpdateHTMLContentCommand) (result BundleResult, err error)
}

func NewUpdateHTMLContentHandler(content *fhir.ContentManager) UpdateHTMLContentHandler {
	return &updateHTMLContentHandler{content: content}
}

type updateHTMLContentHandler struct {
	content *fhir.ContentManager
}

func (h *updateHTMLContentHandler) Handle(ctx context.Context, cmd UpdateHTMLContentCommand) (BundleResult, error) {
	epi, err := fhir.ParseBundle(cmd.Bundle)
	if err != nil {
		return BundleResult{}, err
	}
	if err := h.content.SetHTMLContent(epi.Composition(), cmd.HTML); err != nil {
		return BundleResult{}, err
	}
	out, err := epi.MarshalBundle()
	if err != nil {
		return BundleResult{}, err
	}
	return BundleResult{Bundle: out}, nil
}

type UpdateSectionHTMLCommand struct {
	Bundle       json.RawMessage
	SectionTitle string
	HTML         string
	Recursive    bool
}

type UpdateSectionHTMLHandler interface {
	Handle(ctx context.Context, cmd UpdateSectionHTMLCommand) (result BundleResult, err error)
}

func NewUpdateSectionHTMLHandler(content *fhir.ContentManager) UpdateSectionHTMLHandler {
	return &updateSectionHTMLHandler{content: content}
}

type updateSectionHTMLHandler struct {
	content *fhir.ContentManager
}

func (h *updateSectionHTMLHandler) Handle(ctx context.Context, cmd UpdateSectionHTMLCommand) (BundleResult, error) {
	epi, err := fhir.ParseBundle(cmd.Bundle)
	if err != nil {
		return BundleResult{}, err
	}
	if err := h.content.UpdateSection(epi.Composition(), cmd.SectionTitle, cmd.HTML, cmd.Recursive); err != nil {
		return BundleResult{}, err
	}
	out, err := epi.MarshalBundle()
	if err != nil {
		return BundleResult{}, err
	}
	return BundleResult{Bundle: out}, nil
}

// ReplaceHTMLSpan works on a bare narrative fragment, not on a bundle.
type ReplaceHTMLSpanCommand struct {
	HTML        string
	StartMarker string
	EndMarker   string
	Replacement string
}

type ReplaceHTMLSpanResult struct {
	HTML string
}

type ReplaceHTMLSpanHandler interface {
	Handle(ctx context.Context, cmd ReplaceHTMLSpanCommand) (result ReplaceHTMLSpanResult, err error)
}

func NewReplaceHTMLSpanHandler() ReplaceHTMLSpanHandler {
	return &replaceHTMLSpanHandler{}
}

type replaceHTMLSpanHandler struct{}

func (h *replaceHTMLSpanHandler) Handle(ctx context.Context, cmd ReplaceHTMLSpanCommand) (ReplaceHTMLSpanResult, error) {
	replaced, err := fhir.ReplaceSpan(cmd.HTML, cmd.StartMarker, cmd.EndMarker, cmd.Replacement)
	if err != nil {
		return ReplaceHTMLSpanResult{}, err
	}
	return ReplaceHTMLSpanResult{HTML: replaced}, nil
}

type WrapHTMLCommand struct {
	HTML       string
	Tag        string
	Classes    []string
	Attributes map[string]string
}

type WrapHTMLResult struct {
	HTML string
}

type WrapHTMLHandler interface {
	Handle(ctx context.Context, cmd WrapHTMLCommand) (result WrapHTMLResult, err error)
}

func NewWrapHTMLHandler() WrapHTMLHandler {
	return &wrapHTMLHandler{}
}

type wrapHTMLHandler struct{}

func (h *wrapHTMLHandler) Handle(ctx context.Context, cmd WrapHTMLCommand) (WrapHTMLResult, error) {
	tag := cmd.Tag
	if tag == "" {
		tag = "div"
	}
	return WrapHTMLResult{HTML: htmlkit.Wrap(cmd.HTML, tag, cmd.Classes, cmd.Attributes)}, nil
}
