package vindecode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Field is one top-level member of a decode response.
type Field struct {
	Name  string
	Value json.RawMessage
}

// Payload is a decoded response object with top-level field order preserved.
type Payload struct {
	fields []Field
	index  map[string]int
	raw    []byte
}

// ParsePayload parses body, which must hold exactly one JSON object.
// A repeated key keeps its first position and its last value.
func ParsePayload(body []byte) (*Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("unexpected end of JSON input")
		}
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %s", describeToken(tok))
	}

	p := &Payload{index: make(map[string]int)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("invalid object key %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		if i, dup := p.index[key]; dup {
			p.fields[i].Value = value
			continue
		}
		p.index[key] = len(p.fields)
		p.fields = append(p.fields, Field{Name: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level object")
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return nil, err
	}
	p.raw = compact.Bytes()
	return p, nil
}

func describeToken(tok json.Token) string {
	switch tok.(type) {
	case json.Delim:
		return "an array"
	case string:
		return "a string"
	case float64, json.Number:
		return "a number"
	case bool:
		return "a boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", tok)
	}
}

// Fields returns the top-level fields in response order.
func (p *Payload) Fields() []Field {
	if p == nil {
		return nil
	}
	return p.fields
}

// Len returns the number of top-level fields.
func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.fields)
}

// Get returns the raw value of a top-level field.
func (p *Payload) Get(name string) (json.RawMessage, bool) {
	if p == nil {
		return nil, false
	}
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.fields[i].Value, true
}

// Raw returns the compacted response body. An empty payload renders as {}.
func (p *Payload) Raw() []byte {
	if p == nil || len(p.raw) == 0 {
		return []byte("{}")
	}
	return p.raw
}

// MarshalJSON returns the response body unchanged.
func (p *Payload) MarshalJSON() ([]byte, error) {
	return p.Raw(), nil
}

// Label returns a display name for a top-level field such as "make".
// Strings are used as-is; objects contribute their "name" member.
func (p *Payload) Label(field string) (string, bool) {
	raw, ok := p.Get(field)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	var named struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &named); err == nil && named.Name != "" {
		return named.Name, true
	}
	return "", false
}
