package analytics

import "strings"

// Matcher decides whether a filename belongs to a logical dataset.
type Matcher interface {
	Matches(filename string) bool
}

// SubstringMatcher matches when the normalized target is contained in the
// normalized filename or the other way round. Normalization lowercases and
// drops all whitespace.
type SubstringMatcher struct {
	Target string
}

func (m SubstringMatcher) Matches(filename string) bool {
	current := normalizeName(filename)
	target := normalizeName(m.Target)
	if current == "" || target == "" {
		return false
	}
	return strings.Contains(current, target) || strings.Contains(target, current)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// MatcherFunc adapts a plain function to Matcher.
type MatcherFunc func(filename string) bool

func (f MatcherFunc) Matches(filename string) bool { return f(filename) }

// Find returns the first document, in input order, accepted by m.
func Find(documents []Document, m Matcher) (Document, bool) {
	if m == nil {
		return Document{}, false
	}
	for _, doc := range documents {
		if m.Matches(doc.Filename) {
			return doc, true
		}
	}
	return Document{}, false
}

// FindByName is Find with a SubstringMatcher.
func FindByName(documents []Document, namePart string) (Document, bool) {
	return Find(documents, SubstringMatcher{Target: namePart})
}
