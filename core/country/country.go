// Package country maps billing countries to the market categories used by every report.
package country

import (
	"errors"
	"fmt"
)

// RestOfWorld is the category for every country outside the top markets.
const RestOfWorld = "ROW"

// TopMarkets are the countries reported individually, in display order.
var TopMarkets = []string{"United Kingdom", "United States", "Australia", "Canada", "New Zealand"}

var topMarketSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(TopMarkets))
	for _, c := range TopMarkets {
		m[c] = struct{}{}
	}
	return m
}()

// ErrUnknownCountry is returned when a filter names neither a category nor All.
var ErrUnknownCountry = errors.New("unknown country")

// Filter selects the records of one category, or all of them.
type Filter string

// All keeps every record.
const All Filter = "All"

// Classify returns the category for a billing country: the country itself when it is
// one of the top markets (exact, case-sensitive match), otherwise RestOfWorld.
func Classify(billingCountry string) string {
	if _, ok := topMarketSet[billingCountry]; ok {
		return billingCountry
	}
	return RestOfWorld
}

// Options returns the selectable filters: All, the top markets, then RestOfWorld.
func Options() []string {
	out := make([]string, 0, len(TopMarkets)+2)
	out = append(out, string(All))
	out = append(out, TopMarkets...)
	return append(out, RestOfWorld)
}

// ParseFilter validates a filter name. The empty string selects All.
func ParseFilter(s string) (Filter, error) {
	switch {
	case s == "" || s == string(All):
		return All, nil
	case s == RestOfWorld:
		return Filter(RestOfWorld), nil
	}
	if _, ok := topMarketSet[s]; ok {
		return Filter(s), nil
	}
	return "", fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownCountry, s, Options())
}

// Matches reports whether a record with the given billing country belongs to the filter.
func (f Filter) Matches(billingCountry string) bool {
	if f == All || f == "" {
		return true
	}
	return Classify(billingCountry) == string(f)
}

// String implements fmt.Stringer.
func (f Filter) String() string {
	if f == "" {
		return string(All)
	}
	return string(f)
}
