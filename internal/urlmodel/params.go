package urlmodel

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/MrSnakeDoc/urlpop/internal/utils"
)

// queryParamPattern matches one key=value token of a raw query string.
// The key stops at the first '=', the value runs until the next '&' or '#'.
var queryParamPattern = regexp.MustCompile(`([^?=&#]+)=([^&#]*)`)

// Params is an ordered multimap of query parameters.
// Both the order of names and the order of values under a name are preserved.
type Params struct {
	names  []string
	values map[string][]string
}

// NewParams creates an empty parameter set.
func NewParams() *Params {
	return &Params{values: make(map[string][]string)}
}

// ParseQuery collects the key=value tokens of a raw query string ("?a=1&b=").
// Tokens without '=' are skipped, repeated keys append to the same list.
func ParseQuery(search string) *Params {
	p := NewParams()
	for _, m := range queryParamPattern.FindAllStringSubmatch(search, -1) {
		p.Add(m[1], m[2])
	}
	return p
}

// Add appends a value under name, registering the name if it is new.
func (p *Params) Add(name, value string) {
	p.init()
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = append(p.values[name], value)
}

// Set replaces the values under name. An existing name keeps its position.
func (p *Params) Set(name string, values ...string) {
	p.init()
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = append([]string{}, values...)
}

// Get returns a copy of the values under name.
func (p *Params) Get(name string) []string {
	if p == nil {
		return nil
	}
	v, ok := p.values[name]
	if !ok {
		return nil
	}
	return append([]string{}, v...)
}

// First returns the first value under name.
func (p *Params) First(name string) (string, bool) {
	if p == nil || len(p.values[name]) == 0 {
		return "", false
	}
	return p.values[name][0], true
}

// Has reports whether name is present, even with no values.
func (p *Params) Has(name string) bool {
	if p == nil {
		return false
	}
	_, ok := p.values[name]
	return ok
}

// Del removes name and all of its values.
func (p *Params) Del(name string) {
	if !p.Has(name) {
		return
	}
	delete(p.values, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
}

// Names returns the parameter names in insertion order.
func (p *Params) Names() []string {
	if p == nil {
		return nil
	}
	return append([]string{}, p.names...)
}

// Len returns the number of distinct names.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Encode serializes the parameters without the leading '?'.
// A name with no values is written as "name=". Nothing is percent-encoded.
func (p *Params) Encode() string {
	if p.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for _, name := range p.names {
		values := p.values[name]
		if len(values) == 0 {
			values = []string{""}
		}
		for _, v := range values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(v)
		}
	}
	return b.String()
}

// Clone returns a deep copy.
func (p *Params) Clone() *Params {
	c := NewParams()
	if p == nil {
		return c
	}
	for _, name := range p.names {
		c.Set(name, p.values[name]...)
	}
	return c
}

// MarshalJSON writes the parameters as an object whose key order follows insertion order.
func (p *Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range p.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		values := p.values[name]
		if values == nil {
			values = []string{}
		}
		val, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of string arrays, keeping the document's key order.
func (p *Params) UnmarshalJSON(data []byte) error {
	out := NewParams()
	dec := json.NewDecoder(bytes.NewReader(data))
	err := utils.DecodeOrderedObject(dec, func(name string, dec *json.Decoder) error {
		var values []string
		if err := dec.Decode(&values); err != nil {
			return err
		}
		out.Set(name, values...)
		return nil
	})
	if err != nil {
		return err
	}
	*p = *out
	return nil
}

func (p *Params) init() {
	if p.values == nil {
		p.values = make(map[string][]string)
	}
}
