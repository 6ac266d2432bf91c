package textprep

import (
	_ "embed"
	"strings"
	"sync"
)

//go:embed stopwords_en.txt
var englishStopWordList string

var englishStopWords = sync.OnceValue(func() map[string]struct{} {
	set := map[string]struct{}{}
	for _, word := range strings.Fields(englishStopWordList) {
		set[word] = struct{}{}
	}
	return set
})

// IsStopWord reports whether word is in the English stop-word list.
func IsStopWord(word string) bool {
	_, ok := englishStopWords()[Fold(word)]
	return ok
}
