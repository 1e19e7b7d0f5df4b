package suggest

import (
	"github.com/MrSnakeDoc/urlpop/internal/urlmodel"
)

// Page is the entry stored for a domain: either a *DataPage or an AliasPage.
type Page interface {
	isPage()
}

// DataPage holds the parameter history of a top domain.
// Values under each name are ordered most recently used first.
type DataPage struct {
	params *urlmodel.Params
}

// AliasPage redirects a domain to the DataPage of Target.
type AliasPage struct {
	Target string
}

func (*DataPage) isPage() {}
func (AliasPage) isPage() {}

// NewDataPage wraps params; a nil params gives an empty page.
func NewDataPage(params *urlmodel.Params) *DataPage {
	if params == nil {
		params = urlmodel.NewParams()
	}
	return &DataPage{params: params}
}

// Params returns a copy of the page content.
func (p *DataPage) Params() *urlmodel.Params {
	return p.params.Clone()
}

func (p *DataPage) Len() int {
	return p.params.Len()
}

func (p *DataPage) clone() *DataPage {
	return &DataPage{params: p.params.Clone()}
}

// merge appends values from src that p does not hold yet. Existing order is untouched.
func (p *DataPage) merge(src *urlmodel.Params) {
	for _, name := range src.Names() {
		if name == AliasKey {
			continue
		}
		merged := p.params.Get(name)
		for _, v := range src.Get(name) {
			if !contains(merged, v) {
				merged = append(merged, v)
			}
		}
		p.params.Set(name, merged...)
	}
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func without(values []string, v string) []string {
	out := values[:0:0]
	for _, x := range values {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
