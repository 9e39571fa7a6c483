package keyword

import "strings"

// Match returns the subset of keywords contained in text, case-insensitive
// substring semantics, in input keyword order. No tokenization or word
// boundaries: a keyword matches even mid-word.
func Match(text string, keywords []string) []string {
	if text == "" || len(keywords) == 0 {
		return nil
	}

	lowered := strings.ToLower(text)
	var matched []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// HasMatch reports whether at least one keyword is contained in text.
func HasMatch(text string, keywords []string) bool {
	return len(Match(text, keywords)) > 0
}
