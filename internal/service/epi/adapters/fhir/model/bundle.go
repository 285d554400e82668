package model

import "encoding/json"

type Bundle struct {
	ResourceType string   `json:"resourceType,omitempty"`
	ID           string   `json:"id,omitempty"`
	Type         string   `json:"type,omitempty"` // "document" for ePI bundles
	Timestamp    string   `json:"timestamp,omitempty"`
	Entry        []*Entry `json:"entry,omitempty"`

	rest map[string]json.RawMessage
}

var bundleKnown = []string{"resourceType", "id", "type", "timestamp", "entry"}

func (b *Bundle) UnmarshalJSON(data []byte) error {
	type alias Bundle
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	rest, err := takeRest(data, bundleKnown...)
	if err != nil {
		return err
	}
	*b = Bundle(a)
	b.rest = rest
	return nil
}

func (b Bundle) MarshalJSON() ([]byte, error) {
	type alias Bundle
	known, err := json.Marshal(alias(b))
	if err != nil {
		return nil, err
	}
	return mergeRest(known, b.rest)
}

// Entry keeps its resource as raw JSON. Entries the service never touches
// are re-emitted byte for byte.
type Entry struct {
	FullURL  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`

	rest map[string]json.RawMessage
}

var entryKnown = []string{"fullUrl", "resource"}

func (e *Entry) UnmarshalJSON(data []byte) error {
	type alias Entry
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	rest, err := takeRest(data, entryKnown...)
	if err != nil {
		return err
	}
	*e = Entry(a)
	e.rest = rest
	return nil
}

func (e Entry) MarshalJSON() ([]byte, error) {
	type alias Entry
	known, err := json.Marshal(alias(e))
	if err != nil {
		return nil, err
	}
	return mergeRest(known, e.rest)
}
