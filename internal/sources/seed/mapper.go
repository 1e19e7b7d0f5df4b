package seed

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/urlpop/internal/suggest"
	"github.com/MrSnakeDoc/urlpop/internal/urlmodel"
)

// Merge adds default values to the group of Domain
type Merge struct {
	Domain string
	Params *urlmodel.Params
}

// Bind makes Target an alias of Subject's group
type Bind struct {
	Subject string
	Target  string
}

// Plan is the ordered list of changes a seed file applies to a store
type Plan struct {
	Merges  []Merge
	Binds   []Bind
	Skipped []string // entries ignored because they were invalid
}

// Apply merges every default into st, then binds the aliases.
// Applying the same plan twice changes nothing the second time.
func (p Plan) Apply(st *suggest.Store) {
	for _, m := range p.Merges {
		st.Merge(m.Domain, m.Params)
	}
	for _, b := range p.Binds {
		st.Bind(b.Subject, b.Target)
	}
}

// Mapper converts a seed file into a Plan
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapSeed validates config and converts it to a Plan. Invalid domains, parameter
// names and empty values are skipped.
func (m *Mapper) MapSeed(config SeedConfig) (Plan, error) {
	var plan Plan

	for _, d := range config.Domains {
		domain, ok := normalizeDomain(d.Domain)
		if !ok {
			plan.Skipped = append(plan.Skipped, d.Domain)
			continue
		}

		params := urlmodel.NewParams()
		for _, p := range d.Params {
			if p.Name == "" || p.Name == suggest.AliasKey || strings.ContainsAny(p.Name, "?=&#") {
				plan.Skipped = append(plan.Skipped, domain+"/"+p.Name)
				continue
			}
			for _, v := range p.Values {
				if v == "" {
					continue
				}
				params.Add(p.Name, v)
			}
		}
		if params.Len() > 0 {
			plan.Merges = append(plan.Merges, Merge{Domain: domain, Params: params})
		}

		for _, a := range d.Aliases {
			alias, ok := normalizeDomain(a)
			if !ok || alias == domain {
				plan.Skipped = append(plan.Skipped, a)
				continue
			}
			plan.Binds = append(plan.Binds, Bind{Subject: domain, Target: alias})
		}
	}

	if len(plan.Merges) == 0 && len(plan.Binds) == 0 {
		return Plan{}, fmt.Errorf("no valid domains found in seed file")
	}

	return plan, nil
}

// normalizeDomain lowercases domain and checks that it is a bare hostname
func normalizeDomain(domain string) (string, bool) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return "", false
	}
	m := urlmodel.Parse("http://" + domain + "/")
	if _, hasPort := m.Port(); hasPort || m.Hostname() != domain {
		return "", false
	}
	return domain, true
}
