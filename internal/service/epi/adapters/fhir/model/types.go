package model

import "encoding/json"

type Narrative struct {
	Status string `json:"status,omitempty"` // "generated", "extensions", ...
	Div    string `json:"div,omitempty"`

	rest map[string]json.RawMessage
}

var narrativeKnown = []string{"status", "div"}

func (n *Narrative) UnmarshalJSON(data []byte) error {
	type alias Narrative
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	rest, err := takeRest(data, narrativeKnown...)
	if err != nil {
		return err
	}
	*n = Narrative(a)
	n.rest = rest
	return nil
}

func (n Narrative) MarshalJSON() ([]byte, error) {
	type alias Narrative
	known, err := json.Marshal(alias(n))
	if err != nil {
		return nil, err
	}
	return mergeRest(known, n.rest)
}

// Extension models the two value kinds the element-link profile uses plus
// nested sub-extensions. Every other choice-type value rides in rest.
type Extension struct {
	URL         string      `json:"url,omitempty"`
	ValueString *string     `json:"valueString,omitempty"`
	ValueCoding *Coding     `json:"valueCoding,omitempty"`
	Extension   []Extension `json:"extension,omitempty"`

	rest map[string]json.RawMessage
}

var extensionKnown = []string{"url", "valueString", "valueCoding", "extension"}

func (e *Extension) UnmarshalJSON(data []byte) error {
	type alias Extension
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	rest, err := takeRest(data, extensionKnown...)
	if err != nil {
		return err
	}
	*e = Extension(a)
	e.rest = rest
	return nil
}

func (e Extension) MarshalJSON() ([]byte, error) {
	type alias Extension
	known, err := json.Marshal(alias(e))
	if err != nil {
		return nil, err
	}
	return mergeRest(known, e.rest)
}

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`

	rest map[string]json.RawMessage
}

var codingKnown = []string{"system", "code", "display"}

func (c *Coding) UnmarshalJSON(data []byte) error {
	type alias Coding
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	rest, err := takeRest(data, codingKnown...)
	if err != nil {
		return err
	}
	*c = Coding(a)
	c.rest = rest
	return nil
}

func (c Coding) MarshalJSON() ([]byte, error) {
	type alias Coding
	known, err := json.Marshal(alias(c))
	if err != nil {
		return nil, err
	}
	return mergeRest(known, c.rest)
}
