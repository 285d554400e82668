// Package fhir adapts ePI document bundles: parsing, narrative and section
// content management, and element-link extensions on the Composition.
package fhir

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/domain"
	fhirmodel "github.com/brightleaf-health/epi-preprocessor/internal/service/epi/adapters/fhir/model"
)

// EPI is a parsed ePI document bundle. It keeps the decoded Composition
// next to the raw bundle so edits flow back into the right entry on
// marshal while every other entry stays untouched.
type EPI struct {
	bundle      *fhirmodel.Bundle
	composition *fhirmodel.Composition
	entry       *fhirmodel.Entry
}

// ParseBundle decodes an ePI bundle and locates its Composition. The
// document must be a Bundle holding exactly one Composition entry.
func ParseBundle(data []byte) (*EPI, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &domain.BundleError{Reason: "document is empty"}
	}
	var bundle fhirmodel.Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, &domain.BundleError{Reason: "document is not valid JSON", Err: err}
	}
	return NewEPI(&bundle)
}

// NewEPI wraps an already decoded bundle, enforcing the single-Composition
// invariant.
func NewEPI(bundle *fhirmodel.Bundle) (*EPI, error) {
	if bundle.ResourceType != "Bundle" {
		return nil, &domain.BundleError{Reason: fmt.Sprintf("resource is %q, want Bundle", bundle.ResourceType)}
	}
	e := &EPI{bundle: bundle}
	for _, entry := range bundle.Entry {
		if entry == nil || len(entry.Resource) == 0 {
			continue
		}
		if resourceType(entry.Resource) != "Composition" {
			continue
		}
		if e.composition != nil {
			return nil, &domain.BundleError{Reason: "bundle contains more than one Composition"}
		}
		var comp fhirmodel.Composition
		if err := json.Unmarshal(entry.Resource, &comp); err != nil {
			return nil, &domain.BundleError{Reason: "Composition entry does not decode", Err: err}
		}
		e.composition = &comp
		e.entry = entry
	}
	if e.composition == nil {
		return nil, &domain.BundleError{Reason: "bundle contains no Composition"}
	}
	return e, nil
}

func (e *EPI) Bundle() *fhirmodel.Bundle { return e.bundle }

// Composition returns the decoded Composition. Mutations made through it
// are picked up by MarshalBundle.
func (e *EPI) Composition() *fhirmodel.Composition { return e.composition }

// AllHTMLContent extracts every narrative of the held Composition through
// the given manager.
func (e *EPI) AllHTMLContent(m *ContentManager) (domain.ContentReport, error) {
	return m.ExtractAll(e.composition)
}

// EntriesByResourceType returns the raw resources of every entry with the
// given resourceType, in bundle order.
func (e *EPI) EntriesByResourceType(resType string) []json.RawMessage {
	var out []json.RawMessage
	for _, entry := range e.bundle.Entry {
		if entry == nil {
			continue
		}
		if resourceType(entry.Resource) == resType {
			out = append(out, entry.Resource)
		}
	}
	return out
}

// ResourceCounts tallies the bundle's entries by resourceType.
func (e *EPI) ResourceCounts() map[string]int {
	counts := make(map[string]int)
	for _, entry := range e.bundle.Entry {
		if entry == nil || len(entry.Resource) == 0 {
			continue
		}
		if rt := resourceType(entry.Resource); rt != "" {
			counts[rt]++
		}
	}
	return counts
}

// MarshalBundle re-encodes the Composition into its entry and serializes
// the whole bundle. Fields the service never interpreted come back out
// unchanged.
func (e *EPI) MarshalBundle() ([]byte, error) {
	resource, err := json.Marshal(e.composition)
	if err != nil {
		return nil, err
	}
	e.entry.Resource = resource
	return json.Marshal(e.bundle)
}

func resourceType(raw json.RawMessage) string {
	var probe struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.ResourceType
}
