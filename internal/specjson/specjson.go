// Package specjson manipulates specification documents as ordered JSON.
//
// encoding/json maps discard member order, but the pipeline depends on
// document order in three places: the renderer walks paths in source
// order, extraction truncation keeps the *first* N entries, and
// provenance injection must not reshuffle the document it annotates.
// This package parses JSON objects into ordered member lists and
// re-serialises them without reordering.
package specjson

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Member is one key/value pair of a JSON object.
type Member struct {
	Key   string
	Value json.RawMessage
}

// Object is a JSON object with member order preserved.
type Object []Member

// ParseObject decodes data as a JSON object, preserving member order.
func ParseObject(data []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read opening token: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("not a JSON object")
	}

	var obj Object
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string")
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("read value for %q: %w", key, err)
		}
		obj = append(obj, Member{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read closing token: %w", err)
	}
	return obj, nil
}

// Get returns the value for key and whether it was present.
func (o Object) Get(key string) (json.RawMessage, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns the member keys in document order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// Set replaces the value for key, or appends a new member when the key
// is absent. The returned object shares members with the receiver.
func (o Object) Set(key string, value json.RawMessage) Object {
	for i, m := range o {
		if m.Key == key {
			o[i].Value = value
			return o
		}
	}
	return append(o, Member{Key: key, Value: value})
}

// SetString sets key to a JSON string value.
func (o Object) SetString(key, value string) Object {
	raw, _ := json.Marshal(value)
	return o.Set(key, raw)
}

// Truncate returns a copy with at most n members, in document order.
func (o Object) Truncate(n int) Object {
	if len(o) <= n {
		return o
	}
	return o[:n]
}

// MarshalJSON serialises the object preserving member order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(m.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode serialises the object with two-space indentation.
func (o Object) Encode() ([]byte, error) {
	compact, err := o.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
