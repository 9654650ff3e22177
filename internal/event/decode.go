package event

import "encoding/json"

// DecodePayload returns the payload as T. Payloads published in-process already
// have the concrete type; map payloads (for example from a test or a replay) are
// converted through JSON.
func DecodePayload[T any](payload interface{}) (T, error) {
	var out T
	switch p := payload.(type) {
	case T:
		return p, nil
	case nil:
		return out, ErrEmptyPayload
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}
