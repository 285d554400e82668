package fhir

import (
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/domain"
	fhirmodel "github.com/brightleaf-health/epi-preprocessor/internal/service/epi/adapters/fhir/model"
)

// Sub-extension URLs inside an HtmlElementLink extension.
const (
	extElementClass = "elementClass"
	extConcept      = "concept"
)

// LinkManager manages HtmlElementLink extensions on a Composition. Links
// are keyed by element class; at most one link per class exists. Foreign
// extensions are never touched.
type LinkManager struct{}

func NewLinkManager() *LinkManager {
	return &LinkManager{}
}

// List returns every well-formed element link, in document order.
// Extensions with other URLs are ignored, as are canonical-URL extensions
// missing a class or a coded concept.
func (m *LinkManager) List(comp *fhirmodel.Composition) []domain.HTMLElementLink {
	var links []domain.HTMLElementLink
	for _, ext := range comp.Extension {
		if link, ok := decodeElementLink(ext); ok {
			links = append(links, link)
		}
	}
	return links
}

// Get returns the link for an element class.
func (m *LinkManager) Get(comp *fhirmodel.Composition, class string) (domain.HTMLElementLink, error) {
	for _, ext := range comp.Extension {
		if link, ok := decodeElementLink(ext); ok && link.ElementClass == class {
			return link, nil
		}
	}
	return domain.HTMLElementLink{}, &domain.NotFoundError{Resource: "element link", Key: class}
}

// Add appends a link for a class not linked yet. When the class is already
// linked it fails with a conflict, unless replace is set, in which case the
// existing extension is rewritten in place and keeps its position.
func (m *LinkManager) Add(comp *fhirmodel.Composition, link domain.HTMLElementLink, replace bool) error {
	if err := link.Validate(); err != nil {
		return err
	}
	for i, ext := range comp.Extension {
		existing, ok := decodeElementLink(ext)
		if !ok || existing.ElementClass != link.ElementClass {
			continue
		}
		if !replace {
			return &domain.ConflictError{ElementClass: link.ElementClass}
		}
		comp.Extension[i] = encodeElementLink(link)
		return nil
	}
	comp.Extension = append(comp.Extension, encodeElementLink(link))
	return nil
}

// Remove deletes the link for an element class, preserving the order of
// the remaining extensions.
func (m *LinkManager) Remove(comp *fhirmodel.Composition, class string) error {
	for i, ext := range comp.Extension {
		if link, ok := decodeElementLink(ext); ok && link.ElementClass == class {
			comp.Extension = append(comp.Extension[:i], comp.Extension[i+1:]...)
			return nil
		}
	}
	return &domain.NotFoundError{Resource: "element link", Key: class}
}

func decodeElementLink(ext fhirmodel.Extension) (domain.HTMLElementLink, bool) {
	if ext.URL != domain.HTMLElementLinkURL {
		return domain.HTMLElementLink{}, false
	}
	var link domain.HTMLElementLink
	for _, sub := range ext.Extension {
		switch sub.URL {
		case extElementClass:
			if sub.ValueString != nil {
				link.ElementClass = *sub.ValueString
			}
		case extConcept:
			if sub.ValueCoding != nil {
				link.Concept = domain.Concept{
					System:  sub.ValueCoding.System,
					Code:    sub.ValueCoding.Code,
					Display: sub.ValueCoding.Display,
				}
			}
		}
	}
	if link.ElementClass == "" || link.Concept.Code == "" {
		return domain.HTMLElementLink{}, false
	}
	return link, true
}

func encodeElementLink(link domain.HTMLElementLink) fhirmodel.Extension {
	class := link.ElementClass
	return fhirmodel.Extension{
		URL: domain.HTMLElementLinkURL,
		Extension: []fhirmodel.Extension{
			{URL: extElementClass, ValueString: &class},
			{URL: extConcept, ValueCoding: &fhirmodel.Coding{
				System:  link.Concept.System,
				Code:    link.Concept.Code,
				Display: link.Concept.Display,
			}},
		},
	}
}
