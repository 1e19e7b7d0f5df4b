// Package suggest keeps per-domain histories of query parameter values.
//
// Domains can be bound together: one domain (the top) owns a DataPage and the
// others hold an AliasPage pointing at it, so that the group shares one history.
// A Store is not safe for concurrent use; callers own it for an edit session.
package suggest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/urlpop/internal/urlmodel"
)

// AliasKey is the reserved parameter name that marks an alias page in persisted data.
const AliasKey = "[suggestionAlias]"

// maxAliasHops bounds alias resolution. Well-formed data needs a single hop.
const maxAliasHops = 32

// ErrInvalidRelationship is returned by Unbind when the two domains are not a parent/child pair.
var ErrInvalidRelationship = errors.New("invalid suggestion relationship")

// Store maps domains to pages, remembering the order in which domains were added.
type Store struct {
	order []string
	pages map[string]Page
}

// New creates an empty store.
func New() *Store {
	return &Store{pages: make(map[string]Page)}
}

// Len returns the number of domain entries, aliases included.
func (s *Store) Len() int {
	return len(s.order)
}

// Domains returns every domain in insertion order.
func (s *Store) Domains() []string {
	return append([]string{}, s.order...)
}

// Page returns the raw entry of domain without resolving aliases.
func (s *Store) Page(domain string) (Page, bool) {
	p, ok := s.pages[domain]
	return p, ok
}

// Put stores page under domain as-is. Empty data pages are not kept.
func (s *Store) Put(domain string, page Page) {
	if dp, ok := page.(*DataPage); ok && dp.Len() == 0 {
		s.remove(domain)
		return
	}
	s.put(domain, page)
}

// Top follows the alias chain of domain and returns the domain that owns the data.
// Unknown domains are their own top.
func (s *Store) Top(domain string) string {
	cur := domain
	for i := 0; i < maxAliasHops; i++ {
		alias, ok := s.pages[cur].(AliasPage)
		if !ok || alias.Target == cur {
			return cur
		}
		cur = alias.Target
	}
	return cur
}

// Aliases returns the domains, other than the top itself, that resolve to the top of domain.
func (s *Store) Aliases(domain string) []string {
	top := s.Top(domain)
	var out []string
	for _, d := range s.order {
		if d != top && s.Top(d) == top {
			out = append(out, d)
		}
	}
	return out
}

// Params returns a copy of the parameter history shared by domain's group.
func (s *Store) Params(domain string) *urlmodel.Params {
	if dp, ok := s.pages[s.Top(domain)].(*DataPage); ok {
		return dp.Params()
	}
	return urlmodel.NewParams()
}

// Values returns the history of one parameter, most recent first, keeping only values
// that start with prefix (case-insensitive). An empty prefix keeps everything.
func (s *Store) Values(domain, param, prefix string) []string {
	values := s.Params(domain).Get(param)
	if prefix == "" {
		return values
	}
	lower := strings.ToLower(prefix)
	out := values[:0]
	for _, v := range values {
		if strings.HasPrefix(strings.ToLower(v), lower) {
			out = append(out, v)
		}
	}
	return out
}

// Record moves value to the front of param's history, adding it when new.
// The reserved alias key is never recorded.
func (s *Store) Record(domain, param, value string) {
	if param == AliasKey {
		return
	}
	_, dp := s.vivify(domain)
	values := without(dp.params.Get(param), value)
	dp.params.Set(param, append([]string{value}, values...)...)
}

// Merge adds the values of params that the group of domain does not know yet.
func (s *Store) Merge(domain string, params *urlmodel.Params) {
	if params.Len() == 0 {
		return
	}
	top, dp := s.vivify(domain)
	dp.merge(params)
	if dp.Len() == 0 {
		s.dropGroup(top)
	}
}

// DeleteParam removes param from the group of domain. When no parameter is left,
// the top domain and every domain aliasing it are deleted.
func (s *Store) DeleteParam(domain, param string) {
	top := s.Top(domain)
	dp, ok := s.pages[top].(*DataPage)
	if !ok {
		return
	}
	dp.params.Del(param)
	if dp.Len() == 0 {
		s.dropGroup(top)
	}
}

// DeleteValue removes one value from param. An emptied parameter is deleted like DeleteParam.
func (s *Store) DeleteValue(domain, param, value string) {
	top := s.Top(domain)
	dp, ok := s.pages[top].(*DataPage)
	if !ok || !dp.params.Has(param) {
		return
	}
	values := without(dp.params.Get(param), value)
	if len(values) == 0 {
		s.DeleteParam(top, param)
		return
	}
	dp.params.Set(param, values...)
}

// DeleteDomain removes a single domain entry. Removing an alias leaves the group intact.
// Removing a top domain hands its data to the first alias, and the remaining aliases
// are repointed to that new top.
func (s *Store) DeleteDomain(domain string) {
	page, ok := s.pages[domain]
	if !ok {
		return
	}
	dp, isData := page.(*DataPage)
	if !isData {
		top := s.Top(domain)
		s.repoint(domain, top)
		s.remove(domain)
		return
	}

	aliases := s.Aliases(domain)
	s.remove(domain)
	if len(aliases) == 0 {
		return
	}

	heir := aliases[0]
	s.put(heir, dp)
	for _, a := range aliases[1:] {
		s.put(a, AliasPage{Target: heir})
	}
}

// Bind joins target to the group of subject. The history of target is merged into the
// subject's top page (subject values first, new target values appended), target becomes
// an alias of that top and domains that aliased target follow it.
// When neither group has any history there is nothing to share and Bind does nothing.
func (s *Store) Bind(subject, target string) {
	top := s.Top(subject)
	targetTop := s.Top(target)
	if top == targetTop {
		return
	}

	dp, ok := s.pages[top].(*DataPage)
	if !ok {
		dp = NewDataPage(nil)
	}
	if tp, ok := s.pages[targetTop].(*DataPage); ok {
		dp.merge(tp.params)
	}
	if dp.Len() == 0 {
		return
	}

	s.put(top, dp)
	s.repoint(target, top)
	s.put(target, AliasPage{Target: top})
}

// Unbind detaches the alias side of a bound pair. Exactly one of subject and target
// must be an alias resolving to the other's top; that child receives an independent
// copy of the shared history.
func (s *Store) Unbind(subject, target string) error {
	_, subjectAlias := s.pages[subject].(AliasPage)
	_, targetAlias := s.pages[target].(AliasPage)
	if subjectAlias == targetAlias {
		return fmt.Errorf("%w: cannot tell parent from child between %q and %q",
			ErrInvalidRelationship, subject, target)
	}

	child, parent := subject, target
	if targetAlias {
		child, parent = target, subject
	}

	top := s.Top(parent)
	if s.Top(child) != top {
		return fmt.Errorf("%w: %q is not bound to %q", ErrInvalidRelationship, child, parent)
	}

	dp, ok := s.pages[top].(*DataPage)
	if !ok || dp.Len() == 0 {
		s.remove(child)
		return nil
	}
	s.put(child, dp.clone())
	return nil
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	c := New()
	for _, d := range s.order {
		switch p := s.pages[d].(type) {
		case *DataPage:
			c.put(d, p.clone())
		case AliasPage:
			c.put(d, p)
		}
	}
	return c
}

// vivify returns the top of domain and its DataPage, creating an empty one when missing.
// A top left on an alias (broken chain) is replaced by a data page.
func (s *Store) vivify(domain string) (string, *DataPage) {
	top := s.Top(domain)
	if dp, ok := s.pages[top].(*DataPage); ok {
		return top, dp
	}
	dp := NewDataPage(nil)
	s.put(top, dp)
	return top, dp
}

// dropGroup deletes top and every domain resolving to it.
func (s *Store) dropGroup(top string) {
	members := append(s.Aliases(top), top)
	for _, d := range members {
		s.remove(d)
	}
}

// repoint makes every alias of from point at to instead.
func (s *Store) repoint(from, to string) {
	for _, d := range s.order {
		if alias, ok := s.pages[d].(AliasPage); ok && alias.Target == from && d != to {
			s.pages[d] = AliasPage{Target: to}
		}
	}
}

func (s *Store) put(domain string, page Page) {
	if _, ok := s.pages[domain]; !ok {
		s.order = append(s.order, domain)
	}
	s.pages[domain] = page
}

func (s *Store) remove(domain string) {
	if _, ok := s.pages[domain]; !ok {
		return
	}
	delete(s.pages, domain)
	for i, d := range s.order {
		if d == domain {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
