// Package coerce normalizes raw serialized test inputs into type-correct
// Python argument literals. Dataset quirks are data: an explicit task-id →
// strategy table, not control flow in the execution engine.
package coerce

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind tags a Value node.
type Kind int

const (
	Null Kind = iota
	Bool
	Num // raw JSON number literal, kept verbatim so huge integers survive
	Str
	List
	Tuple
	Set
	Dict
	FloatOf   // float(<inner>)
	ComplexOf // complex(<inner>)
)

// Pair is one Dict entry; insertion order is preserved.
type Pair struct {
	Key Value
	Val Value
}

// Value is a typed literal tree decoded from JSON and reshaped by a
// coercion strategy before rendering.
type Value struct {
	Kind  Kind
	Bool  bool
	Num   string
	Str   string
	Items []Value // List/Tuple/Set elements; FloatOf/ComplexOf inner value
	Pairs []Pair
}

// Parse decodes a raw JSON value into a Value tree. Numbers keep their
// source text and object key order is preserved.
func Parse(raw []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("failed to parse input literal %q: %w", string(raw), err)
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			v := Value{Kind: List}
			for dec.More() {
				item, err := parseValue(dec)
				if err != nil {
					return Value{}, err
				}
				v.Items = append(v.Items, item)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return Value{}, err
			}
			return v, nil
		case '{':
			v := Value{Kind: Dict}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("non-string object key %v", keyTok)
				}
				val, err := parseValue(dec)
				if err != nil {
					return Value{}, err
				}
				v.Pairs = append(v.Pairs, Pair{Key: Value{Kind: Str, Str: key}, Val: val})
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return Value{}, err
			}
			return v, nil
		}
		return Value{}, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return Value{Kind: Str, Str: t}, nil
	case json.Number:
		return Value{Kind: Num, Num: t.String()}, nil
	case bool:
		return Value{Kind: Bool, Bool: t}, nil
	case nil:
		return Value{Kind: Null}, nil
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}
