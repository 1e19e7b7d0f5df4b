package urlmodel

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParamsParsing(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantNames []string
		want      map[string][]string
	}{
		{
			name:      "duplicate names keep order and multiplicity",
			raw:       "http://h/?a=1&a=2&b=x",
			wantNames: []string{"a", "b"},
			want:      map[string][]string{"a": {"1", "2"}, "b": {"x"}},
		},
		{
			name:      "empty values preserved",
			raw:       "http://h/?a=&b=1&c=",
			wantNames: []string{"a", "b", "c"},
			want:      map[string][]string{"a": {""}, "b": {"1"}, "c": {""}},
		},
		{
			name:      "hash is not part of the query",
			raw:       "http://h/?a=1#b=2&c=3",
			wantNames: []string{"a"},
			want:      map[string][]string{"a": {"1"}},
		},
		{
			name:      "hash only",
			raw:       "http://h/#b=2&c=3",
			wantNames: nil,
			want:      map[string][]string{},
		},
		{
			name:      "keys without equals are skipped",
			raw:       "http://h/?flag&x=1&other",
			wantNames: []string{"x"},
			want:      map[string][]string{"x": {"1"}},
		},
		{
			name:      "split on first equals only",
			raw:       "http://h/?token=a=b&n=1",
			wantNames: []string{"token", "n"},
			want:      map[string][]string{"token": {"a=b"}, "n": {"1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.raw).Params()
			if got := p.Names(); !reflect.DeepEqual(got, tt.wantNames) && !(len(got) == 0 && len(tt.wantNames) == 0) {
				t.Errorf("Names() = %v, want %v", got, tt.wantNames)
			}
			for name, want := range tt.want {
				if got := p.Get(name); !reflect.DeepEqual(got, want) {
					t.Errorf("Get(%q) = %v, want %v", name, got, want)
				}
			}
		})
	}
}

func TestSetParams(t *testing.T) {
	m := Parse("http://h/path?old=1#frag")

	p := NewParams()
	p.Set("a")
	p.Add("b", "1")
	p.Add("b", "2")
	p.Set("c", "x y")
	m.SetParams(p)

	if got, want := m.Search(), "?a=&b=1&b=2&c=x y"; got != want {
		t.Errorf("Search() = %q, want %q", got, want)
	}
	if got, want := m.URL(), "http://h/path?a=&b=1&b=2&c=x y#frag"; got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}

	m.SetParams(NewParams())
	if got, want := m.URL(), "http://h/path#frag"; got != want {
		t.Errorf("URL() with no params = %q, want %q", got, want)
	}
}

func TestSetParamsSingleEmpty(t *testing.T) {
	m := Parse("http://h/")
	p := NewParams()
	p.Set("a", "")
	m.SetParams(p)

	if got := m.Search(); got != "?a=" {
		t.Errorf("Search() = %q, want %q", got, "?a=")
	}
}

func TestParamsMutation(t *testing.T) {
	p := ParseQuery("?a=1&b=2&c=3")

	p.Set("b", "9")
	p.Del("a")
	p.Del("missing")
	p.Add("d", "4")

	if got, want := p.Encode(), "b=9&c=3&d=4"; got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
	if v, ok := p.First("c"); !ok || v != "3" {
		t.Errorf("First(c) = %q, %v", v, ok)
	}
	if _, ok := p.First("a"); ok {
		t.Errorf("First(a) found a deleted name")
	}

	c := p.Clone()
	c.Add("b", "10")
	if got := p.Get("b"); len(got) != 1 {
		t.Errorf("Clone() shares values with original: %v", got)
	}
}

func TestParamsJSON(t *testing.T) {
	p := ParseQuery("?z=1&a=2&z=3&e=")

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if got, want := string(data), `{"z":["1","3"],"a":["2"],"e":[""]}`; got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}

	var back Params
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got, want := back.Names(), []string{"z", "a", "e"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Unmarshal() names = %v, want %v", got, want)
	}
	if got, want := back.Encode(), p.Encode(); got != want {
		t.Errorf("Unmarshal() encode = %q, want %q", got, want)
	}
}
