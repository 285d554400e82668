package domain

// HTMLElementLinkURL is the canonical extension URL binding a narrative
// element class to a terminology concept.
const HTMLElementLinkURL = "http://hl7.eu/fhir/ig/gravitate-health/StructureDefinition/HtmlElementLink"

// Concept is a terminology coding carried by an element link.
type Concept struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}

// HTMLElementLink associates a CSS class used in the Composition narrative
// with a coded concept. At most one link exists per element class.
type HTMLElementLink struct {
	ElementClass string  `json:"elementClass"`
	Concept      Concept `json:"concept"`
}

// Validate checks the invariants every stored link satisfies: a class to
// attach to and a concept with a non-empty code.
func (l HTMLElementLink) Validate() error {
	var issues []string
	if l.ElementClass == "" {
		issues = append(issues, "elementClass must not be empty")
	}
	if l.Concept.Code == "" {
		issues = append(issues, "concept.code must not be empty")
	}
	if len(issues) > 0 {
		return &ValidationError{Subject: "element link", Issues: issues}
	}
	return nil
}
