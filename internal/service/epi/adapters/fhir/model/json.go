package model

import "encoding/json"

// takeRest returns every top-level field of data except the known ones,
// raw. Unmarshalers stash the result so unrecognized fields survive a
// decode/encode round trip.
func takeRest(data []byte, known ...string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// mergeRest folds stashed raw fields back into the marshaled known fields.
// Known fields win on collision.
func mergeRest(knownJSON []byte, rest map[string]json.RawMessage) ([]byte, error) {
	if len(rest) == 0 {
		return knownJSON, nil
	}
	merged := make(map[string]json.RawMessage, len(rest)+8)
	if err := json.Unmarshal(knownJSON, &merged); err != nil {
		return nil, err
	}
	for k, v := range rest {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
