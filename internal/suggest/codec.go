package suggest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/urlpop/internal/urlmodel"
	"github.com/MrSnakeDoc/urlpop/internal/utils"
)

// The persisted shape is a JSON object keyed by domain. A data page is an object of
// string arrays; an alias page is {"[suggestionAlias]": ["top.domain"]}.

// EncodePage encodes one page in the persisted shape.
func EncodePage(p Page) ([]byte, error) {
	switch page := p.(type) {
	case *DataPage:
		return json.Marshal(page.params)
	case AliasPage:
		alias := urlmodel.NewParams()
		alias.Set(AliasKey, page.Target)
		return json.Marshal(alias)
	default:
		return nil, fmt.Errorf("unknown page type %T", p)
	}
}

// DecodePage decodes one persisted page. The alias marker wins over any other key.
func DecodePage(data []byte) (Page, error) {
	params := urlmodel.NewParams()
	if err := json.Unmarshal(data, params); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}

	if params.Has(AliasKey) {
		target, ok := params.First(AliasKey)
		if !ok || target == "" {
			return nil, fmt.Errorf("alias marker without target")
		}
		return AliasPage{Target: target}, nil
	}
	return NewDataPage(params), nil
}

// MarshalJSON encodes the whole store in domain order.
func (s *Store) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		page, err := EncodePage(s.pages[d])
		if err != nil {
			return nil, fmt.Errorf("domain %q: %w", d, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(page)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the store content with the decoded object.
// Domain order follows the document; empty data pages are dropped.
func (s *Store) UnmarshalJSON(data []byte) error {
	out := New()
	dec := json.NewDecoder(bytes.NewReader(data))
	err := utils.DecodeOrderedObject(dec, func(domain string, dec *json.Decoder) error {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		page, err := DecodePage(raw)
		if err != nil {
			return err
		}
		out.Put(domain, page)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to decode suggestions: %w", err)
	}
	*s = *out
	return nil
}
