package diag

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// suggestThreshold is the minimum similarity for a suggestion
const suggestThreshold = 0.6

// Suggest returns the vocabulary word closest to word, if it is close enough
func Suggest(word string, vocabulary []string) (string, bool) {
	metric := metrics.NewLevenshtein()
	metric.CaseSensitive = false
	best, score := "", 0.0
	for _, candidate := range vocabulary {
		if sim := strutil.Similarity(word, candidate, metric); sim > score {
			best, score = candidate, sim
		}
	}
	if score < suggestThreshold || best == word {
		return "", false
	}
	return best, true
}

// DidYouMean formats a suggestion for word as a message suffix, or returns
// an empty string when nothing in vocabulary is close
func DidYouMean(word string, vocabulary []string) string {
	if s, ok := Suggest(word, vocabulary); ok {
		return ` (did you mean "` + s + `"?)`
	}
	return ""
}
