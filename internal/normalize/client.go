package normalize

import "strings"

// corporateStopwords are tokens stripped from client names before matching:
// legal suffixes, corporate fillers and connector words. The set is applied
// after Text, so dotted forms like "s.a." arrive already split.
var corporateStopwords = map[string]bool{
	"sa": true, "s": true, "a": true, "ltda": true, "me": true, "epp": true,
	"industria": true, "ind": true, "comercio": true, "com": true,
	"grupo": true, "holdings": true, "brasil": true,
	"do": true, "da": true, "de": true, "the": true,
	"company": true, "co": true, "corp": true, "inc": true,
}

// CanonicalClientRoot reduces a client name to its stable core: the text
// before the first " - " separator, canonicalized, with corporate stopword
// tokens removed. Branch suffixes ("Cliente A - Filial SP") and legal-entity
// decoration both disappear, so spelling variants of the same client share a
// root.
func CanonicalClientRoot(name string) string {
	root, _, _ := strings.Cut(name, " - ")
	var kept []string
	for _, tok := range strings.Fields(Text(root)) {
		if !corporateStopwords[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// ClientMatches reports whether a selected client filter and a candidate
// cell value refer to the same client. Roots are compared by bidirectional
// containment rather than equality, tolerating abbreviations and suffix
// variants on either side. Empty roots never match.
func ClientMatches(selected, candidate string) bool {
	s := CanonicalClientRoot(selected)
	c := CanonicalClientRoot(candidate)
	if s == "" || c == "" {
		return false
	}
	return strings.Contains(s, c) || strings.Contains(c, s)
}
