package assignment

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FallbackVehicle receives every order whose region matches nothing in the
// synonym table. Dispatchers reshuffle those rows by hand.
const FallbackVehicle = "Машина 5"

// Synonym maps one normalized region spelling to the vehicle that serves it.
// Order matters: the substring scan takes the first hit, so longer and more
// specific spellings come first.
type Synonym struct {
	Region  string
	Vehicle string
}

var defaultSynonyms = []Synonym{
	{"вокзальный п/з", "Машина 4"},
	{"вокзальный поселок", "Машина 4"},
	{"вокзальный", "Машина 4"},
	{"центральный район", "Машина 1"},
	{"центральный", "Машина 1"},
	{"центр", "Машина 1"},
	{"ленинский район", "Машина 2"},
	{"ленинский", "Машина 2"},
	{"заводской район", "Машина 3"},
	{"заводской", "Машина 3"},
	{"промзона", "Машина 3"},
	{"северный", "Машина 4"},
	{"южный", "Машина 2"},
}

// Resolver maps free-text region strings coming from the CRM to fixed
// vehicle names. The CRM field is filled by operators, so the input is
// noisy: casing varies, spellings get abbreviated, and whitespace drifts.
type Resolver struct {
	synonyms []Synonym
	fallback string
	lower    cases.Caser
}

// ResolverOption configures optional resolver behavior.
type ResolverOption func(*Resolver)

// WithSynonyms replaces the built-in region table.
func WithSynonyms(table []Synonym) ResolverOption {
	return func(r *Resolver) {
		if len(table) > 0 {
			r.synonyms = table
		}
	}
}

// WithFallbackVehicle overrides the universal fallback.
func WithFallbackVehicle(name string) ResolverOption {
	return func(r *Resolver) {
		if name != "" {
			r.fallback = name
		}
	}
}

// NewResolver builds a resolver over the built-in synonym table.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		synonyms: defaultSynonyms,
		fallback: FallbackVehicle,
		lower:    cases.Lower(language.Russian),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve returns the vehicle serving the given region. The second return
// is false only for blank input, which means "leave the order unassigned"
// rather than an error. Unknown regions resolve to the fallback vehicle.
func (r *Resolver) Resolve(region string) (string, bool) {
	normalized := r.normalize(region)
	if normalized == "" {
		return "", false
	}

	for _, s := range r.synonyms {
		if s.Region == normalized {
			return s.Vehicle, true
		}
	}

	// Operators truncate region names and append house numbers, so check
	// containment both ways before giving up.
	for _, s := range r.synonyms {
		if strings.Contains(normalized, s.Region) || strings.Contains(s.Region, normalized) {
			return s.Vehicle, true
		}
	}

	return r.fallback, true
}

func (r *Resolver) normalize(region string) string {
	return strings.TrimSpace(r.lower.String(region))
}
