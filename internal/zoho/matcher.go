package zoho

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// dealDateFields are checked in priority order when parsing a date out of a
// candidate deal.
var dealDateFields = []string{
	"Course_Start_Date",
	"Start_Date",
	"Enrollment_Date",
	"Closing_Date",
	"Created_Time",
}

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// DealFetcher is the slice of the CRM client the matcher needs.
type DealFetcher interface {
	DealsForContact(ctx context.Context, accessToken, contactID string) ([]Deal, error)
}

// Matcher selects the single best deal for a school across a set of candidate
// contacts. School names in the CRM are abbreviated or expanded
// inconsistently relative to the agency's own register, so matching is a
// deliberately permissive containment check, with nearest-date tie-breaking
// when an enrollment date is known.
type Matcher struct {
	deals DealFetcher
}

// NewMatcher creates a deal matcher over the given fetcher.
func NewMatcher(deals DealFetcher) *Matcher {
	return &Matcher{deals: deals}
}

// FuzzyMatch reports whether two institution names plausibly refer to the
// same school: case- and whitespace-insensitive substring containment in
// either direction. Short abbreviations can over-match; that is an accepted
// tradeoff.
func FuzzyMatch(a, b string) bool {
	na := normalizeName(a)
	nb := normalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

func normalizeName(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), ""))
}

// MatchDeal fetches each contact's deals and picks the best candidate whose
// deal name or account name fuzzy-matches the school. With a target date,
// the dated candidate closest to it (in whole days) wins; a candidate with no
// parseable date is kept only as a last-resort fallback. Without a target
// date the first candidate encountered wins. A nil deal with nil error means
// no candidate matched, which is a normal outcome.
func (m *Matcher) MatchDeal(ctx context.Context, accessToken string, contacts []Contact, schoolName string, targetDate *time.Time) (*Deal, error) {
	var first *Deal
	var best *Deal
	bestDiff := 0
	var fallback *Deal

	for _, contact := range contacts {
		deals, err := m.deals.DealsForContact(ctx, accessToken, contact.ID)
		if err != nil {
			return nil, err
		}

		for i := range deals {
			deal := deals[i]
			if !FuzzyMatch(schoolName, deal.Name) && !FuzzyMatch(schoolName, deal.AccountName) {
				continue
			}

			if first == nil {
				first = &deal
			}
			if targetDate == nil {
				continue
			}

			dealDate, ok := parseDealDate(deal)
			if !ok {
				if fallback == nil {
					fallback = &deal
				}
				continue
			}

			diff := dayDiff(dealDate, *targetDate)
			if best == nil || diff < bestDiff {
				best = &deal
				bestDiff = diff
			}
		}
	}

	if targetDate == nil {
		return first, nil
	}
	if best != nil {
		return best, nil
	}
	if fallback != nil {
		return fallback, nil
	}
	return first, nil
}

// parseDealDate extracts a date from a deal, checking the preferred fields in
// priority order and falling back to scanning every field for an ISO-looking
// value.
func parseDealDate(deal Deal) (time.Time, bool) {
	for _, field := range dealDateFields {
		if value, ok := deal.Fields[field]; ok {
			if parsed, ok := parseISODate(value); ok {
				return parsed, true
			}
		}
	}

	for _, value := range deal.Fields {
		if isoDatePattern.MatchString(value) {
			if parsed, ok := parseISODate(value); ok {
				return parsed, true
			}
		}
	}

	return time.Time{}, false
}

func parseISODate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}

	// Date-like prefix on an otherwise unparseable timestamp.
	if match := isoDatePattern.FindString(value); match != "" {
		if parsed, err := time.Parse("2006-01-02", match); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}

// dayDiff is the absolute difference in whole days, ignoring time of day.
func dayDiff(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)

	diff := int(ad.Sub(bd).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff
}
