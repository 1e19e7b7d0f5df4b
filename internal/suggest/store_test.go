package suggest

import (
	"errors"
	"reflect"
	"testing"

	"github.com/MrSnakeDoc/urlpop/internal/urlmodel"
)

func params(pairs ...string) *urlmodel.Params {
	p := urlmodel.NewParams()
	for i := 0; i+1 < len(pairs); i += 2 {
		p.Add(pairs[i], pairs[i+1])
	}
	return p
}

func TestRecordMovesValueToFront(t *testing.T) {
	s := New()

	s.Record("a.com", "q", "one")
	s.Record("a.com", "q", "two")
	s.Record("a.com", "q", "three")
	s.Record("a.com", "q", "one")

	got := s.Params("a.com").Get("q")
	want := []string{"one", "three", "two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Params().Get(q) = %v, want %v", got, want)
	}
}

func TestRecordIgnoresAliasKey(t *testing.T) {
	s := New()
	s.Record("a.com", AliasKey, "b.com")

	if s.Len() != 0 {
		t.Errorf("Record(AliasKey) created an entry: %v", s.Domains())
	}
}

func TestParamsUnknownDomain(t *testing.T) {
	s := New()
	if got := s.Params("nowhere").Len(); got != 0 {
		t.Errorf("Params(unknown).Len() = %d, want 0", got)
	}
	if s.Len() != 0 {
		t.Errorf("Params() should not create entries")
	}
}

func TestValuesPrefix(t *testing.T) {
	s := New()
	s.Record("a.com", "lang", "English")
	s.Record("a.com", "lang", "french")
	s.Record("a.com", "lang", "Espanol")

	tests := []struct {
		prefix string
		want   []string
	}{
		{prefix: "", want: []string{"Espanol", "french", "English"}},
		{prefix: "e", want: []string{"Espanol", "English"}},
		{prefix: "FR", want: []string{"french"}},
		{prefix: "x", want: []string{}},
	}

	for _, tt := range tests {
		got := s.Values("a.com", "lang", tt.prefix)
		if !reflect.DeepEqual(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
			t.Errorf("Values(prefix=%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}

func TestBindMergesAndAliases(t *testing.T) {
	s := New()
	s.Record("a.com", "p1", "b")
	s.Record("a.com", "p1", "a")
	s.Record("b.com", "p1", "c")
	s.Record("b.com", "p2", "z")

	s.Bind("a.com", "b.com")

	if got, want := s.Params("a.com").Get("p1"), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("a.com p1 = %v, want %v", got, want)
	}
	if got, want := s.Params("a.com").Get("p2"), []string{"z"}; !reflect.DeepEqual(got, want) {
		t.Errorf("a.com p2 = %v, want %v", got, want)
	}

	page, ok := s.Page("b.com")
	if !ok {
		t.Fatal("b.com entry missing after Bind")
	}
	if alias, isAlias := page.(AliasPage); !isAlias || alias.Target != "a.com" {
		t.Errorf("b.com page = %#v, want alias of a.com", page)
	}
	if got := s.Top("b.com"); got != "a.com" {
		t.Errorf("Top(b.com) = %q, want a.com", got)
	}

	// writes through the alias land on the shared page
	s.Record("b.com", "p1", "new")
	if got := s.Params("a.com").Get("p1")[0]; got != "new" {
		t.Errorf("record through alias: first value = %q, want new", got)
	}
}

func TestBindDeduplicatesOverlap(t *testing.T) {
	s := New()
	s.Merge("a.com", params("p", "x", "p", "y"))
	s.Merge("b.com", params("p", "y", "p", "w", "p", "x"))

	s.Bind("a.com", "b.com")

	if got, want := s.Params("b.com").Get("p"), []string{"x", "y", "w"}; !reflect.DeepEqual(got, want) {
		t.Errorf("merged p = %v, want %v", got, want)
	}
}

func TestBindRepointsTargetAliases(t *testing.T) {
	s := New()
	s.Record("a.com", "p", "1")
	s.Record("b.com", "p", "2")
	s.Bind("b.com", "c.com") // c.com -> b.com

	s.Bind("a.com", "b.com")

	for _, d := range []string{"b.com", "c.com"} {
		page, _ := s.Page(d)
		if alias, ok := page.(AliasPage); !ok || alias.Target != "a.com" {
			t.Errorf("%s page = %#v, want direct alias of a.com", d, page)
		}
	}
	if got, want := s.Aliases("a.com"), []string{"b.com", "c.com"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Aliases(a.com) = %v, want %v", got, want)
	}
}

func TestBindSameGroupIsNoop(t *testing.T) {
	s := New()
	s.Record("a.com", "p", "1")
	s.Bind("a.com", "b.com")
	before := s.Clone()

	s.Bind("b.com", "a.com")
	s.Bind("a.com", "a.com")

	if !reflect.DeepEqual(s.Domains(), before.Domains()) {
		t.Errorf("Domains() = %v, want %v", s.Domains(), before.Domains())
	}
	if _, isAlias := mustPage(t, s, "a.com").(AliasPage); isAlias {
		t.Errorf("a.com should remain the top domain")
	}
}

func TestBindWithoutHistory(t *testing.T) {
	s := New()
	s.Bind("a.com", "b.com")
	s.Bind("c.com", "c.com")

	if got := s.Len(); got != 0 {
		t.Fatalf("Len() = %d after binding unknown domains, want 0 (domains %v)", got, s.Domains())
	}

	data, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	if got := string(data); got != "{}" {
		t.Errorf("MarshalJSON() = %s, want {}", got)
	}
}

func TestBindUnknownSubjectTakesTargetHistory(t *testing.T) {
	s := New()
	s.Record("b.com", "p", "1")

	s.Bind("a.com", "b.com")

	if got := s.Top("b.com"); got != "a.com" {
		t.Errorf("Top(b.com) = %q, want a.com", got)
	}
	if got, want := s.Params("a.com").Get("p"), []string{"1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("a.com p = %v, want %v", got, want)
	}

	data, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	back := New()
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON() error: %v", err)
	}
	if got := back.Top("b.com"); got != "a.com" {
		t.Errorf("reloaded Top(b.com) = %q, want a.com", got)
	}
	if got := back.Params("b.com").Get("p"); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("reloaded b.com p = %v, want [1]", got)
	}
}

func TestDeleteLastValueCascades(t *testing.T) {
	s := New()
	s.Record("a.com", "only", "v")
	s.Record("other.com", "x", "1")
	s.Bind("a.com", "b.com")
	s.Bind("a.com", "c.com")

	s.DeleteValue("c.com", "only", "v")

	for _, d := range []string{"a.com", "b.com", "c.com"} {
		if _, ok := s.Page(d); ok {
			t.Errorf("%s still present after cascade", d)
		}
	}
	if _, ok := s.Page("other.com"); !ok {
		t.Errorf("unrelated domain removed by cascade")
	}
}

func TestDeleteValueKeepsOthers(t *testing.T) {
	s := New()
	s.Record("a.com", "p", "1")
	s.Record("a.com", "p", "2")

	s.DeleteValue("a.com", "p", "1")
	s.DeleteValue("a.com", "p", "missing")
	s.DeleteValue("a.com", "nope", "1")

	if got, want := s.Params("a.com").Get("p"), []string{"2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("p = %v, want %v", got, want)
	}
}

func TestDeleteParam(t *testing.T) {
	s := New()
	s.Record("a.com", "p", "1")
	s.Record("a.com", "q", "2")

	s.DeleteParam("a.com", "p")
	if s.Params("a.com").Has("p") {
		t.Errorf("p still present")
	}
	if _, ok := s.Page("a.com"); !ok {
		t.Fatalf("a.com removed while q remains")
	}

	s.DeleteParam("a.com", "q")
	if s.Len() != 0 {
		t.Errorf("store not empty after deleting last param: %v", s.Domains())
	}

	s.DeleteParam("ghost.com", "p")
	if s.Len() != 0 {
		t.Errorf("DeleteParam on unknown domain created entries")
	}
}

func TestDeleteDomain(t *testing.T) {
	t.Run("alias only", func(t *testing.T) {
		s := New()
		s.Record("a.com", "p", "1")
		s.Bind("a.com", "b.com")

		s.DeleteDomain("b.com")

		if _, ok := s.Page("b.com"); ok {
			t.Errorf("b.com still present")
		}
		if got := s.Params("a.com").Get("p"); !reflect.DeepEqual(got, []string{"1"}) {
			t.Errorf("a.com p = %v", got)
		}
	})

	t.Run("single alias is promoted", func(t *testing.T) {
		s := New()
		s.Record("a.com", "p", "1")
		s.Bind("a.com", "b.com")

		s.DeleteDomain("a.com")

		if _, isData := mustPage(t, s, "b.com").(*DataPage); !isData {
			t.Fatalf("b.com was not promoted to a data page")
		}
		if got := s.Params("b.com").Get("p"); !reflect.DeepEqual(got, []string{"1"}) {
			t.Errorf("b.com p = %v", got)
		}
	})

	t.Run("first alias becomes top", func(t *testing.T) {
		s := New()
		s.Record("a.com", "p", "1")
		s.Bind("a.com", "b.com")
		s.Bind("a.com", "c.com")
		s.Bind("a.com", "d.com")

		s.DeleteDomain("a.com")

		if got := s.Top("c.com"); got != "b.com" {
			t.Errorf("Top(c.com) = %q, want b.com", got)
		}
		if got := s.Top("d.com"); got != "b.com" {
			t.Errorf("Top(d.com) = %q, want b.com", got)
		}
		if got, want := s.Domains(), []string{"b.com", "c.com", "d.com"}; !reflect.DeepEqual(got, want) {
			t.Errorf("Domains() = %v, want %v", got, want)
		}
	})
}

func TestUnbind(t *testing.T) {
	s := New()
	s.Record("a.com", "p", "1")
	s.Bind("a.com", "b.com")

	if err := s.Unbind("a.com", "b.com"); err != nil {
		t.Fatalf("Unbind() error: %v", err)
	}

	if _, isData := mustPage(t, s, "b.com").(*DataPage); !isData {
		t.Fatalf("b.com is still an alias")
	}

	// the copies are independent
	s.Record("b.com", "p", "2")
	if got := s.Params("a.com").Get("p"); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("a.com p = %v, want [1]", got)
	}
	if got := s.Params("b.com").Get("p"); !reflect.DeepEqual(got, []string{"2", "1"}) {
		t.Errorf("b.com p = %v, want [2 1]", got)
	}
}

func TestUnbindChildFirst(t *testing.T) {
	s := New()
	s.Record("a.com", "p", "1")
	s.Bind("a.com", "b.com")

	if err := s.Unbind("b.com", "a.com"); err != nil {
		t.Fatalf("Unbind(child, parent) error: %v", err)
	}
	if got := s.Top("b.com"); got != "b.com" {
		t.Errorf("Top(b.com) = %q after unbind", got)
	}
}

func TestUnbindInvalidRelationship(t *testing.T) {
	s := New()
	s.Record("a.com", "p", "1")
	s.Record("x.com", "p", "1")
	s.Bind("a.com", "b.com")
	s.Bind("a.com", "c.com")
	s.Bind("x.com", "y.com")

	tests := []struct {
		name    string
		subject string
		target  string
	}{
		{name: "both aliases", subject: "b.com", target: "c.com"},
		{name: "neither alias", subject: "a.com", target: "x.com"},
		{name: "alias of another group", subject: "a.com", target: "y.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Unbind(tt.subject, tt.target)
			if !errors.Is(err, ErrInvalidRelationship) {
				t.Errorf("Unbind(%s, %s) error = %v, want ErrInvalidRelationship", tt.subject, tt.target, err)
			}
		})
	}
}

func TestAliasCycleIsBounded(t *testing.T) {
	s := New()
	s.Put("a.com", AliasPage{Target: "b.com"})
	s.Put("b.com", AliasPage{Target: "a.com"})

	top := s.Top("a.com")
	if top != "a.com" && top != "b.com" {
		t.Fatalf("Top() = %q, want a member of the cycle", top)
	}

	s.Record("a.com", "p", "1")
	if got := s.Params("b.com").Get("p"); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("cycle not repaired by write: %v", got)
	}
}

func TestMergeAppendsNovelValues(t *testing.T) {
	s := New()
	s.Record("a.com", "p", "recent")

	s.Merge("a.com", params("p", "seed1", "p", "recent", "q", "x"))

	if got, want := s.Params("a.com").Get("p"), []string{"recent", "seed1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("p = %v, want %v", got, want)
	}
	if got, want := s.Params("a.com").Names(), []string{"p", "q"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := New()
	s.Record("a.com", "p", "1")
	c := s.Clone()
	c.Record("a.com", "p", "2")

	if got := s.Params("a.com").Get("p"); len(got) != 1 {
		t.Errorf("Clone() shares pages: %v", got)
	}
}

func mustPage(t *testing.T, s *Store, domain string) Page {
	t.Helper()
	p, ok := s.Page(domain)
	if !ok {
		t.Fatalf("no page for %s", domain)
	}
	return p
}
