package geo

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold reduces a place name to a comparison key: diacritics stripped,
// Turkish dotless i folded, lower case, single spaces. "ÜSKÜDAR",
// "Üsküdar" and "Uskudar" all fold to "uskudar".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.Map(func(r rune) rune {
		switch r {
		case 'ı':
			return 'i'
		case 'ß':
			return 's'
		}
		return r
	}, out)
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}

// MatchName finds the candidate key that names one of names. Names are
// tried in order; for each, an exact folded match wins, otherwise a unique
// prefix match in either direction. It returns the candidate key.
func MatchName(candidates map[string]string, names ...string) (string, bool) {
	keys := make([]string, 0, len(candidates))
	folded := make(map[string]string, len(candidates))
	for k := range candidates {
		keys = append(keys, k)
		folded[k] = Fold(k)
	}
	sort.Strings(keys)

	for _, name := range names {
		want := Fold(name)
		if want == "" {
			continue
		}

		for _, k := range keys {
			if folded[k] == want {
				return k, true
			}
		}

		var hits []string
		for _, k := range keys {
			f := folded[k]
			if strings.HasPrefix(f, want) || strings.HasPrefix(want, f) {
				hits = append(hits, k)
			}
		}
		if len(hits) == 1 {
			return hits[0], true
		}
	}
	return "", false
}
