package model

import "encoding/json"

type Composition struct {
	ResourceType string      `json:"resourceType,omitempty"`
	ID           string      `json:"id,omitempty"`
	Status       string      `json:"status,omitempty"`
	Title        string      `json:"title,omitempty"`
	Text         *Narrative  `json:"text,omitempty"`
	Extension    []Extension `json:"extension,omitempty"`
	Section      []*Section  `json:"section,omitempty"`

	rest map[string]json.RawMessage
}

var compositionKnown = []string{"resourceType", "id", "status", "title", "text", "extension", "section"}

func (c *Composition) UnmarshalJSON(data []byte) error {
	type alias Composition
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	rest, err := takeRest(data, compositionKnown...)
	if err != nil {
		return err
	}
	*c = Composition(a)
	c.rest = rest
	return nil
}

func (c Composition) MarshalJSON() ([]byte, error) {
	type alias Composition
	known, err := json.Marshal(alias(c))
	if err != nil {
		return nil, err
	}
	return mergeRest(known, c.rest)
}

// Section nests arbitrarily. Code stays raw, the service reports it but
// never interprets it.
type Section struct {
	Title   string          `json:"title,omitempty"`
	Code    json.RawMessage `json:"code,omitempty"`
	Text    *Narrative      `json:"text,omitempty"`
	Section []*Section      `json:"section,omitempty"`

	rest map[string]json.RawMessage
}

var sectionKnown = []string{"title", "code", "text", "section"}

func (s *Section) UnmarshalJSON(data []byte) error {
	type alias Section
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	rest, err := takeRest(data, sectionKnown...)
	if err != nil {
		return err
	}
	*s = Section(a)
	s.rest = rest
	return nil
}

func (s Section) MarshalJSON() ([]byte, error) {
	type alias Section
	known, err := json.Marshal(alias(s))
	if err != nil {
		return nil, err
	}
	return mergeRest(known, s.rest)
}
