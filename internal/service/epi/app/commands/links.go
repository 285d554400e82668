package commands

import (
	"context"
	"encoding/json"

	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/adapters/fhir"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/domain"
)

type AddElementLinkCommand struct {
	Bundle  json.RawMessage
	Link    domain.HTMLElementLink
	Replace bool
}

type AddElementLinkHandler interface {
	Handle(ctx context.Context, cmd AddElementLinkCommand) (result BundleResult, err error)
}

func NewAddElementLinkHandler(links *fhir.LinkManager) AddElementLinkHandler {
	return &addElementLinkHandler{links: links}
}

type addElementLinkHandler struct {
	links *fhir.LinkManager
}

func (h *addElementLinkHandler) Handle(ctx context.Context, cmd AddElementLinkCommand) (BundleResult, error) {
	epi, err := fhir.ParseBundle(cmd.Bundle)
	if err != nil {
		return BundleResult{}, err
	}
	if err := h.links.Add(epi.Composition(), cmd.Link, cmd.Replace); err != nil {
		return BundleResult{}, err
	}
	out, err := epi.MarshalBundle()
	if err != nil {
		return BundleResult{}, err
	}
	return BundleResult{Bundle: out}, nil
}

type RemoveElementLinkCommand struct {
	Bundle       json.RawMessage
	ElementClass string
}

type RemoveElementLinkHandler interface {
	Handle(ctx context.Context, cmd RemoveElementLinkCommand) (result BundleResult, err error)
}

func NewRemoveElementLinkHandler(links *fhir.LinkManager) RemoveElementLinkHandler {
	return &removeElementLinkHandler{links: links}
}

type removeElementLinkHandler struct {
	links *fhir.LinkManager
}

func (h *removeElementLinkHandler) Handle(ctx context.Context, cmd RemoveElementLinkCommand) (BundleResult, error) {
	epi, err := fhir.ParseBundle(cmd.Bundle)
	if err != nil {
		return BundleResult{}, err
	}
	if err := h.links.Remove(epi.Composition(), cmd.ElementClass); err != nil {
		return BundleResult{}, err
	}
	out, err := epi.MarshalBundle()
	if err != nil {
		return BundleResult{}, err
	}
	return BundleResult{Bundle: out}, nil
}
