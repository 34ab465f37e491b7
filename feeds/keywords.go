package feeds

import "strings"

// ContainsKeyword reports whether any keyword occurs in the text. Matching is
// case-insensitive substring containment, no stemming and no word boundaries.
// That trade-off is intentional: "hack" matching inside "backhack" is accepted
// in exchange for keyword lists staying dumb and predictable.
func ContainsKeyword(text string, keywords []string) bool {
	return len(MatchedKeywords(text, keywords)) > 0
}

// MatchedKeywords returns every keyword that occurs in the text, in keyword
// list order. The result is shown in the dashboard so editors can see why an
// article made the cut.
func MatchedKeywords(text string, keywords []string) []string {
	lowered := strings.ToLower(text)

	var matched []string
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			matched = append(matched, keyword)
		}
	}

	return matched
}
