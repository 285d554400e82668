package queries

import (
	"context"
	"encoding/json"

	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/adapters/fhir"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/domain"
)

type ListElementLinksQuery struct {
	Bundle json.RawMessage
}

type ListElementLinksResult struct {
	Links []domain.HTMLElementLink
}

type ListElementLinksQueryHandler interface {
	Handle(ctx context.Context, query ListElementLinksQuery) (result ListElementLinksResult, err error)
}

func NewListElementLinksQueryHandler(links *fhir.LinkManager) ListElementLinksQueryHandler {
	return &listElementLinksQueryHandler{links: links}
}

type listElementLinksQueryHandler struct {
	links *fhir.LinkManager
}

func (h *listElementLinksQueryHandler) Handle(ctx context.Context, query ListElementLinksQuery) (ListElementLinksResult, error) {
	epi, err := fhir.ParseBundle(query.Bundle)
	if err != nil {
		return ListElementLinksResult{}, err
	}
	return ListElementLinksResult{Links: h.links.List(epi.Composition())}, nil
}

type GetElementLinkQuery struct {
	Bundle       json.RawMessage
	ElementClass string
}

type GetElementLinkResult struct {
	Link domain.HTMLElementLink
}

type GetElementLinkQueryHandler interface {
	Handle(ctx context.Context, query GetElementLinkQuery) (result GetElementLinkResult, err error)
}

func NewGetElementLinkQueryHandler(links *fhir.LinkManager) GetElementLinkQueryHandler {
	return &getElementLinkQueryHandler{links: links}
}

type getElementLinkQueryHandler struct {
	links *fhir.LinkManager
}

func (h *getElementLinkQueryHandler) Handle(ctx context.Context, query GetElementLinkQuery) (GetElementLinkResult, error) {
	epi, err := fhir.ParseBundle(query.Bundle)
	if err != nil {
		return GetElementLinkResult{}, err
	}
	link, err := h.links.Get(epi.Composition(), query.ElementClass)
	if err != nil {
		return GetElementLinkResult{}, err
	}
	return GetElementLinkResult{Link: link}, nil
}
