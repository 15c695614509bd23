package remote

import (
	"encoding/json"
	"errors"
	"fmt"
)

var errMissingSuccess = errors.New("response envelope has no success field")

// Envelope is a decoded remote store response: the success flag, an
// optional message and every action-specific field left raw.
type Envelope struct {
	Success bool
	Message string
	fields  map[string]json.RawMessage
}

// ParseEnvelope decodes a response body. It fails when the body is not a
// JSON object or has no boolean success field.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	return envelopeFromFields(fields)
}

func envelopeFromFields(fields map[string]json.RawMessage) (*Envelope, error) {
	rawSuccess, ok := fields["success"]
	if !ok {
		return nil, errMissingSuccess
	}

	env := &Envelope{fields: fields}
	if err := json.Unmarshal(rawSuccess, &env.Success); err != nil {
		return nil, fmt.Errorf("success field: %w", err)
	}
	if rawMsg, ok := fields["message"]; ok {
		// Scripts occasionally send a non-string message; keep it readable.
		if err := json.Unmarshal(rawMsg, &env.Message); err != nil {
			env.Message = string(rawMsg)
		}
	}
	return env, nil
}

// Has reports whether the response carried field.
func (e *Envelope) Has(field string) bool {
	raw, ok := e.fields[field]
	return ok && string(raw) != "null"
}

// Raw returns the undecoded JSON of field.
func (e *Envelope) Raw(field string) json.RawMessage {
	return e.fields[field]
}

// Decode unmarshals field into out. A missing or null field leaves out untouched.
func (e *Envelope) Decode(field string, out any) error {
	raw, ok := e.fields[field]
	if !ok || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", field, err)
	}
	return nil
}

// String returns field as text, formatting numbers as the store sends them.
func (e *Envelope) String(field string) string {
	raw, ok := e.fields[field]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
