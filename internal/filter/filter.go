// Package filter translates catalog filter state to and from URL query
// strings and applies a state to a normalized product list.
package filter

import (
	"net/url"
	"sort"
	"strings"

	"github.com/qudratrading/mawared/internal/domain"
)

type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortNameAsc   SortOrder = "name-asc"
	SortNameDesc  SortOrder = "name-desc"
)

// State is the ephemeral filter selection of the products page. The zero
// value plus SortRelevance is the default state and encodes to "".
type State struct {
	Search   string
	Category string
	Features []string
	Brands   []string
	Sort     SortOrder
}

func Default() State {
	return State{Sort: SortRelevance}
}

// Parse reads a state from query parameters. Multi-value keys accept both
// repeated keys and comma-joined values; unknown keys and unknown sort values
// are ignored.
func Parse(params url.Values) State {
	s := State{
		Search:   strings.TrimSpace(params.Get("search")),
		Category: strings.TrimSpace(params.Get("category")),
		Features: canonicalList(params["features"]),
		Brands:   canonicalList(params["brands"]),
		Sort:     SortRelevance,
	}
	switch SortOrder(params.Get("sort")) {
	case SortNameAsc:
		s.Sort = SortNameAsc
	case SortNameDesc:
		s.Sort = SortNameDesc
	}
	return s
}

// Encode serializes the state canonically: keys with default values are
// omitted entirely, so the default state yields an empty string.
func (s State) Encode() string {
	v := url.Values{}
	if t := strings.TrimSpace(s.Search); t != "" {
		v.Set("search", t)
	}
	if c := strings.TrimSpace(s.Category); c != "" {
		v.Set("category", c)
	}
	for _, f := range canonicalList(s.Features) {
		v.Add("features", f)
	}
	for _, b := range canonicalList(s.Brands) {
		v.Add("brands", b)
	}
	if s.Sort != "" && s.Sort != SortRelevance {
		v.Set("sort", string(s.Sort))
	}
	return v.Encode()
}

// Canonical returns the state with all fields in canonical form (trimmed,
// deduplicated, sorted lists, defaulted sort).
func (s State) Canonical() State {
	out := State{
		Search:   strings.TrimSpace(s.Search),
		Category: strings.TrimSpace(s.Category),
		Features: canonicalList(s.Features),
		Brands:   canonicalList(s.Brands),
		Sort:     s.Sort,
	}
	if out.Sort != SortNameAsc && out.Sort != SortNameDesc {
		out.Sort = SortRelevance
	}
	return out
}

// Equal compares two states by canonical encoding, so list order and
// whitespace differences do not matter.
func (s State) Equal(o State) bool {
	return s.Encode() == o.Encode()
}

func (s State) IsDefault() bool {
	return s.Encode() == ""
}

// canonicalList trims, splits comma-joined entries, drops empties, collapses
// duplicates and sorts ordinally.
func canonicalList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, raw := range in {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	sort.Strings(out)
	return out
}

// Apply filters and sorts a normalized product list. Search terms must all
// match the product's search text; the category must appear on the trail;
// feature and brand selections each match any-of.
func Apply(products []domain.Product, s State) []domain.Product {
	s = s.Canonical()
	terms := strings.Fields(strings.ToLower(s.Search))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !matchTerms(p.SearchText, terms) {
			continue
		}
		if s.Category != "" && !contains(p.CategorySlugs, s.Category) {
			continue
		}
		if len(s.Features) > 0 && !matchAny(productTokens(p), s.Features) {
			continue
		}
		if len(s.Brands) > 0 && !contains(s.Brands, p.Brand) {
			continue
		}
		out = append(out, p)
	}

	switch s.Sort {
	case SortNameAsc:
		sort.SliceStable(out, func(i, j int) bool { return titleLess(out[i], out[j]) })
	case SortNameDesc:
		sort.SliceStable(out, func(i, j int) bool { return titleLess(out[j], out[i]) })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	}
	return out
}

func titleLess(a, b domain.Product) bool {
	la, lb := strings.ToLower(a.Title), strings.ToLower(b.Title)
	if la != lb {
		return la < lb
	}
	return a.Slug < b.Slug
}

func matchTerms(text string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return true
}

func productTokens(p domain.Product) []string {
	tokens := append([]string{}, p.Features...)
	for _, s := range p.Specifications {
		tokens = append(tokens, s.Values...)
	}
	return tokens
}

func matchAny(tokens, wanted []string) bool {
	for _, w := range wanted {
		if contains(tokens, w) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
