package zoho

import (
	"context"
	"testing"
	"time"
)

type fakeDealFetcher struct {
	deals map[string][]Deal
	calls int
}

func (f *fakeDealFetcher) DealsForContact(_ context.Context, _ string, contactID string) ([]Deal, error) {
	f.calls++
	return f.deals[contactID], nil
}

func makeDeal(id, name, account, stage string, fields map[string]string) Deal {
	all := map[string]string{
		"id":        id,
		"Deal_Name": name,
		"Stage":     stage,
	}
	if account != "" {
		all["Account_Name"] = account
	}
	for k, v := range fields {
		all[k] = v
	}
	return Deal{ID: id, Name: name, Stage: stage, AccountName: account, Fields: all}
}

func TestFuzzyMatch_SymmetricContainment(t *testing.T) {
	if !FuzzyMatch("ABC University", "abc") {
		t.Fatal("expected ABC University to match abc")
	}
	if !FuzzyMatch("abc", "ABC University") {
		t.Fatal("expected abc to match ABC University")
	}
	if FuzzyMatch("ABC", "XYZ") {
		t.Fatal("expected ABC not to match XYZ")
	}
}

func TestFuzzyMatch_WhitespaceInsensitive(t *testing.T) {
	if !FuzzyMatch("Auckland  Institute", "aucklandinstitute of technology") {
		t.Fatal("expected whitespace-insensitive containment")
	}
	if FuzzyMatch("", "anything") {
		t.Fatal("expected empty name never to match")
	}
}

func TestMatchDeal_DateTieBreak(t *testing.T) {
	target := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	near := makeDeal("D-near", "Near", "ABC University", "Negotiation", map[string]string{"Start_Date": "2024-03-04"})
	far := makeDeal("D-far", "Far", "ABC University", "Proposal", map[string]string{"Start_Date": "2024-03-11"})

	// The 3-day candidate must win regardless of list order.
	for _, deals := range [][]Deal{{near, far}, {far, near}} {
		fetcher := &fakeDealFetcher{deals: map[string][]Deal{"C1": deals}}
		matcher := NewMatcher(fetcher)

		deal, err := matcher.MatchDeal(context.Background(), "tok", []Contact{{ID: "C1"}}, "ABC", &target)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deal == nil || deal.ID != "D-near" {
			t.Fatalf("expected nearest-date deal D-near, got %+v", deal)
		}
	}
}

func TestMatchDeal_DatedBeatsUndated(t *testing.T) {
	target := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	undated := makeDeal("D-undated", "Undated", "ABC University", "Proposal", nil)
	dated := makeDeal("D-dated", "Dated", "ABC University", "Negotiation", map[string]string{"Closing_Date": "2024-06-01"})

	fetcher := &fakeDealFetcher{deals: map[string][]Deal{"C1": {undated, dated}}}
	matcher := NewMatcher(fetcher)

	deal, err := matcher.MatchDeal(context.Background(), "tok", []Contact{{ID: "C1"}}, "ABC", &target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deal == nil || deal.ID != "D-dated" {
		t.Fatalf("expected dated candidate to beat undated fallback, got %+v", deal)
	}
}

func TestMatchDeal_UndatedFallback(t *testing.T) {
	target := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	undated := makeDeal("D-undated", "Undated", "ABC University", "Proposal", nil)
	fetcher := &fakeDealFetcher{deals: map[string][]Deal{"C1": {undated}}}
	matcher := NewMatcher(fetcher)

	deal, err := matcher.MatchDeal(context.Background(), "tok", []Contact{{ID: "C1"}}, "ABC", &target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deal == nil || deal.ID != "D-undated" {
		t.Fatalf("expected undated candidate as last resort, got %+v", deal)
	}
}

func TestMatchDeal_NoTargetPicksFirst(t *testing.T) {
	first := makeDeal("D1", "First", "ABC University", "Proposal", map[string]string{"Start_Date": "2030-01-01"})
	second := makeDeal("D2", "Second", "ABC University", "Negotiation", map[string]string{"Start_Date": "2024-01-01"})

	fetcher := &fakeDealFetcher{deals: map[string][]Deal{"C1": {first, second}}}
	matcher := NewMatcher(fetcher)

	deal, err := matcher.MatchDeal(context.Background(), "tok", []Contact{{ID: "C1"}}, "ABC", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deal == nil || deal.ID != "D1" {
		t.Fatalf("expected first candidate without a target date, got %+v", deal)
	}
}

func TestMatchDeal_NoCandidates(t *testing.T) {
	other := makeDeal("D1", "Unrelated College", "Unrelated College", "Proposal", nil)
	fetcher := &fakeDealFetcher{deals: map[string][]Deal{"C1": {other}}}
	matcher := NewMatcher(fetcher)

	deal, err := matcher.MatchDeal(context.Background(), "tok", []Contact{{ID: "C1"}}, "Auckland Institute", nil)
	if err != nil {
		t.Fatalf("expected no-match to be a normal outcome, got error %v", err)
	}
	if deal != nil {
		t.Fatalf("expected nil deal, got %+v", deal)
	}
}

func TestParseDealDate_PriorityOrder(t *testing.T) {
	deal := makeDeal("D1", "X", "Y", "S", map[string]string{
		"Closing_Date":      "2024-06-01",
		"Course_Start_Date": "2024-03-04",
	})

	parsed, ok := parseDealDate(deal)
	if !ok {
		t.Fatal("expected a parsed date")
	}
	if parsed.Format("2006-01-02") != "2024-03-04" {
		t.Fatalf("expected Course_Start_Date to win priority, got %s", parsed.Format("2006-01-02"))
	}
}

func TestParseDealDate_ScanFallback(t *testing.T) {
	deal := makeDeal("D1", "X", "Y", "S", map[string]string{
		"Some_Custom_Field": "2024-03-04T10:30:00+13:00",
	})

	parsed, ok := parseDealDate(deal)
	if !ok {
		t.Fatal("expected the field scan to find an ISO-looking date")
	}
	if parsed.Format("2006-01-02") != "2024-03-04" {
		t.Fatalf("expected 2024-03-04, got %s", parsed.Format("2006-01-02"))
	}
}

func TestParseDealDate_NoDate(t *testing.T) {
	deal := makeDeal("D1", "X", "Y", "S", nil)
	if _, ok := parseDealDate(deal); ok {
		t.Fatal("expected no parseable date")
	}
}
