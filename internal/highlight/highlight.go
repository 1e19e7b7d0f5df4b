// Package highlight computes which part of a rendered URL should be emphasized
// for a given text cursor or parameter index.
package highlight

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/MrSnakeDoc/urlpop/internal/urlmodel"
)

// paramTokenPattern matches name=value pairs. Names exclude "?=&#", values exclude "&?#".
var paramTokenPattern = regexp.MustCompile(`([^?=&#]+)=([^&?#]*)`)

// Span is a half-open [Start, End) byte range over the full URL string.
type Span struct {
	Start int
	End   int
}

// MarshalJSON encodes a span as a two-element array.
func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Start, s.End})
}

func (s *Span) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("span must be [start,end]: %w", err)
	}
	s.Start, s.End = pair[0], pair[1]
	return nil
}

// Selector picks the segment to highlight: a cursor offset or a parameter index.
type Selector struct {
	value   int
	isParam bool
}

// Cursor selects by character offset in the full URL.
func Cursor(offset int) Selector { return Selector{value: offset} }

// Param selects the index-th query parameter token.
func Param(index int) Selector { return Selector{value: index, isParam: true} }

func (s Selector) IsParam() bool { return s.isParam }

func (s Selector) Value() int { return s.value }

// layout holds the component lengths measured against the full URL.
type layout struct {
	full    string
	hostLen int // scheme prefix, protocol and host
	pathLen int
	hashLen int
}

func newLayout(full, pathname, search, hash string) layout {
	l := layout{
		full:    full,
		pathLen: len(pathname),
		hashLen: len(hash),
	}
	l.hostLen = len(full) - len(search) - l.pathLen - l.hashLen
	if l.hostLen < 0 {
		// components do not describe full; treat everything as host
		l = layout{full: full, hostLen: len(full)}
	}
	return l
}

// Compute returns the spans to emphasize over m.URL().
func Compute(m *urlmodel.Model, sel Selector) []Span {
	return compute(newLayout(m.URL(), m.Pathname(), m.Search(), m.Hash()), sel)
}

// ComputeString parses raw and computes spans over its serialized form.
// Offsets refer to Parse(raw).URL(), which equals raw for canonical input.
func ComputeString(raw string, sel Selector) []Span {
	return Compute(urlmodel.Parse(raw), sel)
}

func compute(l layout, sel Selector) []Span {
	if !sel.isParam {
		offset := sel.value
		if offset <= l.hostLen {
			return []Span{{Start: 0, End: l.hostLen}}
		}
		if offset <= l.hostLen+l.pathLen {
			return []Span{{Start: l.hostLen, End: l.hostLen + l.pathLen}}
		}
	}

	spans := paramSpans(l, sel)
	if len(spans) > 0 {
		return spans
	}

	if !sel.isParam && l.hashLen > 0 && sel.value > len(l.full)-l.hashLen {
		return []Span{{Start: len(l.full) - l.hashLen, End: len(l.full)}}
	}
	return []Span{}
}

// paramSpans returns the name and value spans of the selected parameter token.
// Tokens are counted over the whole URL, so a name=value pair in the fragment has an index too.
func paramSpans(l layout, sel Selector) []Span {
	for index, m := range paramTokenPattern.FindAllStringSubmatchIndex(l.full, -1) {
		offset := m[0]
		nameLen := m[3] - m[2]
		valueLen := m[5] - m[4]

		var selected bool
		if sel.isParam {
			selected = index == sel.value
		} else {
			selected = sel.value >= offset && sel.value <= offset+nameLen+valueLen+1
		}
		if !selected {
			continue
		}

		valueStart := offset + nameLen + 1
		return []Span{
			{Start: offset, End: offset + nameLen},
			{Start: valueStart, End: valueStart + valueLen},
		}
	}
	return nil
}
