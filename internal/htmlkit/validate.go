package htmlkit

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ValidateXHTML scans a narrative fragment and lists everything wrong with
// it: empty content, NUL characters, XML well-formedness violations and a
// missing namespace declaration on the root element. Narratives travel as
// XHTML, so the scan is an XML token walk primed with the HTML entity
// table. A nil result means the fragment passed.
func (k *Kit) ValidateXHTML(fragment string) []string {
	if strings.TrimSpace(fragment) == "" {
		return []string{"content is empty"}
	}
	var issues []string
	if strings.ContainsRune(fragment, '\x00') {
		issues = append(issues, "content contains NUL characters")
		fragment = strings.ReplaceAll(fragment, "\x00", "")
	}
	dec := xml.NewDecoder(strings.NewReader(fragment))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity
	sawRoot := false
	rootInNamespace := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			issues = append(issues, fmt.Sprintf("content is not well-formed XHTML: %v", err))
			break
		}
		if start, ok := tok.(xml.StartElement); ok && !sawRoot {
			sawRoot = true
			// A default xmlns declaration surfaces as the element's name space.
			rootInNamespace = start.Name.Space != ""
		}
	}
	if sawRoot && !rootInNamespace {
		issues = append(issues, "root element is missing an XHTML namespace declaration")
	}
	return issues
}
