package highlight

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/MrSnakeDoc/urlpop/internal/urlmodel"
)

const sampleURL = "http://something/dddd?param1=1&param2=val2&param3=t"

func TestComputeString(t *testing.T) {
	tests := []struct {
		name string
		url  string
		sel  Selector
		want []Span
	}{
		{
			name: "cursor at start highlights host",
			url:  sampleURL,
			sel:  Cursor(0),
			want: []Span{{0, 16}},
		},
		{
			name: "boundary belongs to host",
			url:  sampleURL,
			sel:  Cursor(16),
			want: []Span{{0, 16}},
		},
		{
			name: "cursor in path",
			url:  sampleURL,
			sel:  Cursor(18),
			want: []Span{{16, 21}},
		},
		{
			name: "path end boundary belongs to path",
			url:  sampleURL,
			sel:  Cursor(21),
			want: []Span{{16, 21}},
		},
		{
			name: "cursor in first param name",
			url:  sampleURL,
			sel:  Cursor(24),
			want: []Span{{22, 28}, {29, 30}},
		},
		{
			name: "cursor in param2 value",
			url:  sampleURL,
			sel:  Cursor(40),
			want: []Span{{31, 37}, {38, 42}},
		},
		{
			name: "param index selects param2",
			url:  sampleURL,
			sel:  Param(1),
			want: []Span{{31, 37}, {38, 42}},
		},
		{
			name: "last param",
			url:  sampleURL,
			sel:  Param(2),
			want: []Span{{43, 49}, {50, 51}},
		},
		{
			name: "param index out of range",
			url:  sampleURL,
			sel:  Param(7),
			want: []Span{},
		},
		{
			name: "cursor in hash",
			url:  "http://h/p?a=1#frag",
			sel:  Cursor(16),
			want: []Span{{14, 19}},
		},
		{
			name: "name=value in hash is a token",
			url:  "http://h/#a=b",
			sel:  Cursor(11),
			want: []Span{{10, 11}, {12, 13}},
		},
		{
			name: "hash token follows query tokens in index order",
			url:  "http://h/p?x=1#k=v",
			sel:  Param(1),
			want: []Span{{15, 16}, {17, 18}},
		},
		{
			name: "token end is inclusive before hash",
			url:  "http://h/p?x=1#k=v",
			sel:  Cursor(14),
			want: []Span{{11, 12}, {13, 14}},
		},
		{
			name: "empty value",
			url:  "http://h/?a=&b=2",
			sel:  Cursor(11),
			want: []Span{{10, 11}, {12, 12}},
		},
		{
			name: "scheme prefix counts as host",
			url:  "view-source:http://h/p",
			sel:  Cursor(5),
			want: []Span{{0, 20}},
		},
		{
			name: "unparseable url",
			url:  "garbage",
			sel:  Cursor(3),
			want: []Span{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeString(tt.url, tt.sel)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ComputeString(%q, %+v) = %v, want %v", tt.url, tt.sel, got, tt.want)
			}
		})
	}
}

func TestComputeAfterEdit(t *testing.T) {
	m := urlmodel.Parse("http://h/?a=1")
	p := m.Params()
	p.Add("bb", "22")
	m.SetParams(p)

	got := Compute(m, Param(1))
	want := []Span{{14, 16}, {17, 19}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compute() = %v, want %v (url %q)", got, want, m.URL())
	}

	full := m.URL()
	if full[got[0].Start:got[0].End] != "bb" || full[got[1].Start:got[1].End] != "22" {
		t.Errorf("spans do not cover bb=22 in %q", full)
	}
}

func TestSpanJSON(t *testing.T) {
	data, err := json.Marshal([]Span{{31, 37}, {38, 42}})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if got, want := string(data), "[[31,37],[38,42]]"; got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}

	var back []Span
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !reflect.DeepEqual(back, []Span{{31, 37}, {38, 42}}) {
		t.Errorf("Unmarshal() = %v", back)
	}
}
