package utils

import (
	"encoding/json"
	"fmt"
)

// DecodeOrderedObject walks a JSON object and calls fn once per key, in document order.
// fn must consume exactly one value from dec. A JSON null is accepted as an empty object.
func DecodeOrderedObject(dec *json.Decoder, fn func(key string, dec *json.Decoder) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := fn(key, dec); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
	}

	// closing '}'
	_, err = dec.Token()
	return err
}
