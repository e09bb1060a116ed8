package hospital

import (
	"sort"
	"strings"
)

// fuzzyCutoff is the minimum similarity ratio for a fuzzy alias match.
const fuzzyCutoff = 0.75

// Matcher normalizes a free-text specialty query into a canonical term the
// backend search endpoint understands.
type Matcher interface {
	Normalize(query string) string
}

// specialtySynonyms maps canonical specialties to their known aliases,
// including Hindi and Marathi phrasings patients commonly use.
var specialtySynonyms = map[string][]string{
	"Cardiologist": {
		"cardiologist",
		"heart doctor",
		"heart specialist",
		"हृदय रोग विशेषज्ञ",
		"हृदयाचा डॉक्टर",
	},
	"Dermatologist": {
		"dermatologist",
		"skin doctor",
		"skin specialist",
		"त्वचा रोग विशेषज्ञ",
		"त्वचेचा डॉक्टर",
	},
	"Gastroenterologist": {
		"gastroenterologist",
		"gastro",
		"stomach doctor",
		"digestive doctor",
		"पोटाचा डॉक्टर",
		"पोटाचे डॉक्टर",
		"अन्ननलिका विशेषज्ञ",
	},
	"Pediatrician": {
		"pediatrician",
		"child doctor",
		"बालरोग तज्ञ",
		"बाळांचा डॉक्टर",
	},
	"Neurologist": {
		"neurologist",
		"brain doctor",
		"न्यूरोलॉजिस्ट",
		"मेंदूचा डॉक्टर",
	},
	"Orthopedic Surgeon": {
		"orthopedic",
		"bone doctor",
		"हाडांचा डॉक्टर",
		"ऑर्थोपेडिक",
	},
}

// SynonymMatcher resolves specialty queries against a fixed alias table.
// Matching tries an exact alias lookup, then fuzzy similarity, then substring
// containment, and finally passes the query through unchanged.
type SynonymMatcher struct {
	aliasToSpecialty map[string]string
	aliases          []string
}

// NewSynonymMatcher builds a matcher from the built-in alias table.
func NewSynonymMatcher() *SynonymMatcher {
	m := &SynonymMatcher{aliasToSpecialty: make(map[string]string)}
	for canonical, aliases := range specialtySynonyms {
		for _, alias := range aliases {
			m.aliasToSpecialty[strings.ToLower(alias)] = canonical
		}
	}
	// Sorted alias order keeps fuzzy and substring matching deterministic.
	m.aliases = make([]string, 0, len(m.aliasToSpecialty))
	for alias := range m.aliasToSpecialty {
		m.aliases = append(m.aliases, alias)
	}
	sort.Strings(m.aliases)
	return m
}

// Normalize maps a free-text specialty query to its canonical term. Queries
// that match no alias are returned unchanged.
func (m *SynonymMatcher) Normalize(query string) string {
	cleaned := strings.ToLower(strings.TrimSpace(query))
	if cleaned == "" {
		return query
	}

	if canonical, ok := m.aliasToSpecialty[cleaned]; ok {
		return canonical
	}

	if alias := m.closestAlias(cleaned); alias != "" {
		return m.aliasToSpecialty[alias]
	}

	for _, alias := range m.aliases {
		if strings.Contains(cleaned, alias) {
			return m.aliasToSpecialty[alias]
		}
	}

	return query
}

// closestAlias returns the best-scoring alias above the fuzzy cutoff, or ""
// when none qualifies.
func (m *SynonymMatcher) closestAlias(cleaned string) string {
	best := ""
	bestScore := fuzzyCutoff
	for _, alias := range m.aliases {
		score := similarity(cleaned, alias)
		if score > bestScore {
			best = alias
			bestScore = score
		}
	}
	return best
}

// similarity computes a Levenshtein-based ratio in [0, 1] over runes.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes edit distance with a single rolling row.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diagonal := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			above := row[j]
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min(above+1, row[j-1]+1, diagonal+cost)
			diagonal = above
		}
	}
	return row[len(b)]
}
