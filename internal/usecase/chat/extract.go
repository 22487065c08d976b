package chat

import (
	"strings"
	"unicode/utf8"
)

type keywordMapping struct {
	keyword string
	term    string
}

// Checked in order; the first hit wins.
var categoryKeywords = []keywordMapping{
	{"phone", "smartphone"},
	{"laptop", "laptop"},
	{"headphones", "headphones"},
	{"jeans", "jeans"},
	{"cooking", "kitchen"},
	{"book", "programming"},
	{"shoes", "sneakers"},
	{"skincare", "moisturizer"},
}

var brandKeywords = []string{
	"apple", "iphone", "macbook",
	"sony", "nike", "levi's", "levis",
	"instant pot", "cerave",
}

var (
	budgetWords  = []string{"cheap", "budget", "affordable", "under"}
	premiumWords = []string{"premium", "expensive", "high-end", "best"}
)

var stopWords = map[string]struct{}{
	"what": {}, "where": {}, "when": {}, "how": {}, "can": {}, "could": {},
	"would": {}, "should": {}, "the": {}, "and": {}, "or": {}, "but": {},
}

const (
	maxCleanedLength = 50
	maxKeyWords      = 5
	minKeyWordLength = 4
)

// ExtractTerms derives a search term from a chat message. Keywords match as
// substrings of the lower-cased message, in priority order: category table,
// brand list, budget words, premium words. Without a keyword the message is
// cleaned and, when long, reduced to its first few significant words.
func ExtractTerms(message string) string {
	lower := strings.ToLower(message)

	for _, m := range categoryKeywords {
		if strings.Contains(lower, m.keyword) {
			return m.term
		}
	}
	for _, b := range brandKeywords {
		if strings.Contains(lower, b) {
			return b
		}
	}
	if containsAny(lower, budgetWords) {
		return "budget"
	}
	if containsAny(lower, premiumWords) {
		return "premium"
	}

	cleaned := strings.TrimSpace(strings.NewReplacer("?", "", "!", "").Replace(message))
	if utf8.RuneCountInString(cleaned) <= maxCleanedLength {
		return cleaned
	}

	var keep []string
	for _, w := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(w) < minKeyWordLength {
			continue
		}
		if _, stop := stopWords[strings.ToLower(w)]; stop {
			continue
		}
		keep = append(keep, w)
		if len(keep) == maxKeyWords {
			break
		}
	}
	return strings.Join(keep, " ")
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
