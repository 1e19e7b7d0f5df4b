package redis

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/urlpop/internal/suggest"
	"github.com/MrSnakeDoc/urlpop/internal/urlmodel"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, "test:"), mr
}

func sampleSuggestions() *suggest.Store {
	st := suggest.New()
	st.Record("example.com", "utm_source", "b")
	st.Record("example.com", "utm_source", "a")
	st.Record("other.org", "q", "x")
	st.Bind("example.com", "www.example.com")
	return st
}

func TestSaveAndLoadSuggestions(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveSuggestions(ctx, sampleSuggestions()); err != nil {
		t.Fatalf("SaveSuggestions() error: %v", err)
	}

	raw, err := mr.Get("test:suggest:page:www.example.com")
	if err != nil {
		t.Fatalf("alias page not written: %v", err)
	}
	if raw != `{"[suggestionAlias]":["example.com"]}` {
		t.Errorf("alias page = %s", raw)
	}

	got, err := s.LoadSuggestions(ctx)
	if err != nil {
		t.Fatalf("LoadSuggestions() error: %v", err)
	}

	wantDomains := []string{"example.com", "other.org", "www.example.com"}
	if !reflect.DeepEqual(got.Domains(), wantDomains) {
		t.Errorf("Domains() = %v, want %v", got.Domains(), wantDomains)
	}
	if v := got.Values("www.example.com", "utm_source", ""); !reflect.DeepEqual(v, []string{"a", "b"}) {
		t.Errorf("Values() through alias = %v", v)
	}
}

func TestSaveRemovesDeletedDomains(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	st := sampleSuggestions()
	if err := s.SaveSuggestions(ctx, st); err != nil {
		t.Fatalf("SaveSuggestions() error: %v", err)
	}

	st.DeleteParam("other.org", "q")
	if err := s.SaveSuggestions(ctx, st); err != nil {
		t.Fatalf("SaveSuggestions() error: %v", err)
	}

	if mr.Exists("test:suggest:page:other.org") {
		t.Error("page of deleted domain still present")
	}
	list, err := mr.List("test:suggest:domains")
	if err != nil {
		t.Fatalf("domains list: %v", err)
	}
	if !reflect.DeepEqual(list, []string{"example.com", "www.example.com"}) {
		t.Errorf("domains list = %v", list)
	}
}

func TestSaveEmptyStore(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveSuggestions(ctx, sampleSuggestions()); err != nil {
		t.Fatalf("SaveSuggestions() error: %v", err)
	}
	if err := s.SaveSuggestions(ctx, suggest.New()); err != nil {
		t.Fatalf("SaveSuggestions(empty) error: %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Errorf("keys left after saving an empty store: %v", keys)
	}
}

func TestLoadSkipsCorruptPages(t *testing.T) {
	s, mr := newTestStore(t)

	_, _ = mr.RPush("test:suggest:domains", "good.com", "bad.com", "missing.com")
	_ = mr.Set("test:suggest:page:good.com", `{"q":["1"]}`)
	_ = mr.Set("test:suggest:page:bad.com", `not json`)

	got, err := s.LoadSuggestions(context.Background())
	if err != nil {
		t.Fatalf("LoadSuggestions() error: %v", err)
	}
	if !reflect.DeepEqual(got.Domains(), []string{"good.com"}) {
		t.Errorf("Domains() = %v, want [good.com]", got.Domains())
	}
}

func TestLoadRecoversWithoutDomainList(t *testing.T) {
	s, mr := newTestStore(t)

	_ = mr.Set("test:suggest:page:b.com", `{"q":["1"]}`)
	_ = mr.Set("test:suggest:page:a.com", `{"[suggestionAlias]":["b.com"]}`)

	got, err := s.LoadSuggestions(context.Background())
	if err != nil {
		t.Fatalf("LoadSuggestions() error: %v", err)
	}
	if !reflect.DeepEqual(got.Domains(), []string{"a.com", "b.com"}) {
		t.Errorf("Domains() = %v", got.Domains())
	}
	if got.Top("a.com") != "b.com" {
		t.Errorf("Top(a.com) = %q, want b.com", got.Top("a.com"))
	}
}

func TestLoadEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	got, err := s.LoadSuggestions(context.Background())
	if err != nil {
		t.Fatalf("LoadSuggestions() error: %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("Len() = %d, want 0", got.Len())
	}
}

func TestSnapshots(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first, err := s.SaveSnapshot(ctx, []byte(`{"a.com":{"q":["1"]}}`), base, DefaultSnapshotTTL)
	if err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}
	second, err := s.SaveSnapshot(ctx, []byte(`{}`), base.Add(time.Minute), DefaultSnapshotTTL)
	if err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	ids, err := s.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots() error: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{second, first}) {
		t.Errorf("ListSnapshots() = %v, want newest first", ids)
	}

	data, err := s.GetSnapshot(ctx, first)
	if err != nil {
		t.Fatalf("GetSnapshot() error: %v", err)
	}
	if string(data) != `{"a.com":{"q":["1"]}}` {
		t.Errorf("GetSnapshot() = %s", data)
	}

	mr.FastForward(DefaultSnapshotTTL + time.Second)
	if _, err := s.GetSnapshot(ctx, first); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("GetSnapshot() after expiry error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestKeys(t *testing.T) {
	k := NewKeys("")
	if got := k.PageKey("a.com"); got != "urlpop:suggest:page:a.com" {
		t.Errorf("PageKey() = %q", got)
	}

	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "urlpop:suggest:page:a.com", want: "a.com"},
		{key: "urlpop:suggest:page:", wantErr: true},
		{key: "other:suggest:page:a.com", wantErr: true},
	}
	for _, tt := range tests {
		got, err := k.ExtractDomain(tt.key)
		if (err != nil) != tt.wantErr {
			t.Errorf("ExtractDomain(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractDomain(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestMergeAfterLoadKeepsOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	st := suggest.New()
	p := urlmodel.NewParams()
	p.Set("q", "z", "y")
	st.Merge("a.com", p)
	if err := s.SaveSuggestions(ctx, st); err != nil {
		t.Fatalf("SaveSuggestions() error: %v", err)
	}

	got, err := s.LoadSuggestions(ctx)
	if err != nil {
		t.Fatalf("LoadSuggestions() error: %v", err)
	}
	if v := got.Values("a.com", "q", ""); !reflect.DeepEqual(v, []string{"z", "y"}) {
		t.Errorf("Values() = %v, want [z y]", v)
	}
}
