package zoho

import (
	"context"
	"strings"
)

// ContactSearcher is the slice of the CRM client the resolver needs.
type ContactSearcher interface {
	SearchContactsByName(ctx context.Context, accessToken, fullName string) ([]Contact, error)
}

// Resolver locates CRM contacts for a free-text student name. The CRM offers
// only exact-match search, while operators enter names with inconsistent
// ordering and casing, so several permutations are probed and an intersection
// fallback recovers contacts whose stored full name carries extra tokens.
type Resolver struct {
	search ContactSearcher
}

// NewResolver creates a contact resolver over the given searcher.
func NewResolver(search ContactSearcher) *Resolver {
	return &Resolver{search: search}
}

// NameVariants generates the ordered, deduplicated set of exact-match
// queries for a student name.
//
// Two tokens produce both orderings, each additionally with the first token
// upper-cased (some CRM on-boarding pipelines store surnames capitalized).
// Three or more tokens produce the original order, the fully reversed order,
// and the first-/last-token-upper-cased forms.
func NameVariants(name string) []string {
	parts := strings.Fields(name)

	var variants []string
	switch len(parts) {
	case 0:
		return nil
	case 1:
		variants = []string{parts[0]}
	case 2:
		first, second := parts[0], parts[1]
		variants = []string{
			first + " " + second,
			second + " " + first,
			strings.ToUpper(first) + " " + second,
			second + " " + strings.ToUpper(first),
		}
	default:
		last := len(parts) - 1
		reversed := make([]string, len(parts))
		for i, part := range parts {
			reversed[last-i] = part
		}

		firstUpper := append([]string{strings.ToUpper(parts[0])}, parts[1:]...)
		lastUpper := append(append([]string{}, parts[:last]...), strings.ToUpper(parts[last]))

		variants = []string{
			strings.Join(parts, " "),
			strings.Join(reversed, " "),
			strings.Join(firstUpper, " "),
			strings.Join(lastUpper, " "),
		}
	}

	return dedupe(variants)
}

// ResolveContacts returns the contacts matching a student name, along with
// every query that was attempted (for operator diagnostics). An empty result
// is a normal outcome; only transport failures return an error.
//
// Variants are probed in generated order and the first variant returning any
// contacts wins. When no variant matches a multi-token name, each token is
// queried individually and the intersection of the per-token results is kept,
// filtered to contacts whose full name contains every token.
func (r *Resolver) ResolveContacts(ctx context.Context, accessToken, studentName string) ([]Contact, []string, error) {
	variants := NameVariants(studentName)
	tried := append([]string{}, variants...)
	if len(variants) == 0 {
		return nil, tried, nil
	}

	for _, variant := range variants {
		contacts, err := r.search.SearchContactsByName(ctx, accessToken, variant)
		if err != nil {
			return nil, tried, err
		}
		if len(contacts) > 0 {
			return contacts, tried, nil
		}
	}

	parts := strings.Fields(studentName)
	if len(parts) > 1 {
		contacts, tokenQueries, err := r.resolveByIntersection(ctx, accessToken, parts)
		tried = append(tried, tokenQueries...)
		if err != nil {
			return nil, tried, err
		}
		return contacts, tried, nil
	}

	// Single-token names get one last direct query.
	tried = append(tried, parts[0])
	contacts, err := r.search.SearchContactsByName(ctx, accessToken, parts[0])
	if err != nil {
		return nil, tried, err
	}
	return contacts, tried, nil
}

// resolveByIntersection queries every token separately and keeps the contacts
// present in all per-token result sets whose full name (case-insensitively)
// contains every token. This recovers contacts whose stored name has extra or
// missing tokens that break whole-phrase matching.
func (r *Resolver) resolveByIntersection(ctx context.Context, accessToken string, tokens []string) ([]Contact, []string, error) {
	queried := make([]string, 0, len(tokens))

	var ordered []Contact
	var common map[string]bool

	for i, token := range tokens {
		queried = append(queried, token)

		contacts, err := r.search.SearchContactsByName(ctx, accessToken, token)
		if err != nil {
			return nil, queried, err
		}

		ids := make(map[string]bool, len(contacts))
		for _, contact := range contacts {
			ids[contact.ID] = true
		}

		if i == 0 {
			ordered = contacts
			common = ids
			continue
		}

		for id := range common {
			if !ids[id] {
				delete(common, id)
			}
		}
		if len(common) == 0 {
			return nil, queried, nil
		}
	}

	var matched []Contact
	for _, contact := range ordered {
		if !common[contact.ID] {
			continue
		}
		if containsAllTokens(contact.FullName, tokens) {
			matched = append(matched, contact)
		}
	}

	return matched, queried, nil
}

func containsAllTokens(fullName string, tokens []string) bool {
	lowered := strings.ToLower(fullName)
	for _, token := range tokens {
		if !strings.Contains(lowered, strings.ToLower(token)) {
			return false
		}
	}
	return true
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if seen[value] {
			continue
		}
		seen[value] = true
		result = append(result, value)
	}
	return result
}
