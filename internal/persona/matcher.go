// Package persona derives structured persona signals from retrieved
// conversation chunks and assembles the prompts that keep generated
// responses in character.
package persona

import "strings"

// Matcher reports whether a transcript speaker attribution belongs to
// the modeled persona. It is a pluggable predicate so the persona
// identity check is not hard-coded into the extractor.
type Matcher func(speaker string) bool

// NameMatcher builds a Matcher that accepts exactly the given names,
// compared lower-cased and trimmed.
func NameMatcher(names ...string) Matcher {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return func(speaker string) bool {
		_, ok := set[strings.ToLower(strings.TrimSpace(speaker))]
		return ok
	}
}

// DefaultMatcher recognizes the name variants the corpus uses for the
// modeled persona.
func DefaultMatcher() Matcher {
	return NameMatcher("alex", "alexey", "alex shulga", "alexey shulga", "shulga")
}
