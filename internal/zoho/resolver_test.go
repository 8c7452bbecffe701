package zoho

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeSearcher struct {
	results map[string][]Contact
	calls   []string
	err     error
}

func (f *fakeSearcher) SearchContactsByName(_ context.Context, _ string, fullName string) ([]Contact, error) {
	f.calls = append(f.calls, fullName)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[fullName], nil
}

func TestNameVariants_TwoTokens(t *testing.T) {
	got := NameVariants("john smith")
	want := []string{"john smith", "smith john", "JOHN smith", "smith JOHN"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected variants %v, got %v", want, got)
	}
}

func TestNameVariants_ThreeTokens(t *testing.T) {
	got := NameVariants("anna maria lopez")
	want := []string{
		"anna maria lopez",
		"lopez maria anna",
		"ANNA maria lopez",
		"anna maria LOPEZ",
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected variants %v, got %v", want, got)
	}
}

func TestNameVariants_SingleToken(t *testing.T) {
	got := NameVariants("  Cher ")
	want := []string{"Cher"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected variants %v, got %v", want, got)
	}
}

func TestNameVariants_Empty(t *testing.T) {
	if got := NameVariants("   "); len(got) != 0 {
		t.Fatalf("expected no variants for blank name, got %v", got)
	}
}

func TestNameVariants_Deduplicated(t *testing.T) {
	// Upper-casing an already upper-cased token collapses variants.
	got := NameVariants("LI wei")
	want := []string{"LI wei", "wei LI"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected deduplicated variants %v, got %v", want, got)
	}
}

func TestResolveContacts_FirstVariantWins(t *testing.T) {
	search := &fakeSearcher{results: map[string][]Contact{
		"smith john": {{ID: "C1", FullName: "Smith John"}},
		"JOHN smith": {{ID: "C2", FullName: "JOHN smith"}},
	}}
	resolver := NewResolver(search)

	contacts, tried, err := resolver.ResolveContacts(context.Background(), "tok", "john smith")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contacts) != 1 || contacts[0].ID != "C1" {
		t.Fatalf("expected first matching variant's contact C1, got %v", contacts)
	}
	// Probing must stop at the first variant that returns results.
	wantCalls := []string{"john smith", "smith john"}
	if !reflect.DeepEqual(search.calls, wantCalls) {
		t.Fatalf("expected calls %v, got %v", wantCalls, search.calls)
	}
	if len(tried) != 4 {
		t.Fatalf("expected all 4 variants reported as tried, got %v", tried)
	}
}

func TestResolveContacts_IntersectionFallback(t *testing.T) {
	search := &fakeSearcher{results: map[string][]Contact{
		"li":  {{ID: "C1", FullName: "Li Wei Zhang"}, {ID: "C2", FullName: "Li Qiang"}},
		"wei": {{ID: "C1", FullName: "Li Wei Zhang"}, {ID: "C3", FullName: "Wei Chen"}},
	}}
	resolver := NewResolver(search)

	contacts, _, err := resolver.ResolveContacts(context.Background(), "tok", "li wei")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contacts) != 1 || contacts[0].ID != "C1" {
		t.Fatalf("expected intersection to recover C1, got %v", contacts)
	}
}

func TestResolveContacts_IntersectionRequiresAllTokensInName(t *testing.T) {
	// C1 appears in both per-token result sets but its stored name does not
	// contain "wei", so it must be filtered out.
	search := &fakeSearcher{results: map[string][]Contact{
		"li":  {{ID: "C1", FullName: "Li Zhang"}},
		"wei": {{ID: "C1", FullName: "Li Zhang"}},
	}}
	resolver := NewResolver(search)

	contacts, _, err := resolver.ResolveContacts(context.Background(), "tok", "li wei")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contacts) != 0 {
		t.Fatalf("expected no contacts, got %v", contacts)
	}
}

func TestResolveContacts_SingleTokenRetries(t *testing.T) {
	search := &fakeSearcher{results: map[string][]Contact{}}
	resolver := NewResolver(search)

	contacts, _, err := resolver.ResolveContacts(context.Background(), "tok", "Cher")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contacts) != 0 {
		t.Fatalf("expected empty result, got %v", contacts)
	}
	wantCalls := []string{"Cher", "Cher"}
	if !reflect.DeepEqual(search.calls, wantCalls) {
		t.Fatalf("expected the single token queried twice, got %v", search.calls)
	}
}

func TestResolveContacts_TransportErrorPropagates(t *testing.T) {
	search := &fakeSearcher{err: errors.New("connection reset")}
	resolver := NewResolver(search)

	_, _, err := resolver.ResolveContacts(context.Background(), "tok", "john smith")
	if err == nil {
		t.Fatal("expected transport error to propagate")
	}
}
