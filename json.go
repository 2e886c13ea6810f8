package luatab

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// FromJSON decodes a single JSON document into a [Value], keeping object keys
// in document order. Numbers without a fraction or exponent become integers
// when they fit in 64 bits.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid JSON: trailing data after document")
	}
	return v, nil
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch tok := tok.(type) {
	case nil:
		return Nil{}, nil
	case bool:
		return Bool(tok), nil
	case json.Number:
		return parseNumber(string(tok))
	case string:
		return Text(tok), nil
	case json.Delim:
		switch tok {
		case '[':
			seq := Sequence{}
			for dec.More() {
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				seq = append(seq, v)
			}
			_, err := dec.Token()
			return seq, err
		case '{':
			t := NewTable()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("invalid JSON: object key %v", kt)
				}
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				t.Set(key, v)
			}
			_, err := dec.Token()
			return t, err
		}
	}
	return nil, fmt.Errorf("invalid JSON: unexpected token %v", tok)
}
