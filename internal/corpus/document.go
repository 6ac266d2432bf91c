package corpus

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Record is one raw row of an input file.
type Record map[string]any

// String returns the field as a string. Numbers keep their shortest decimal
// form so numeric IDs survive the trip through JSON.
func (r Record) String(key string) (string, bool) {
	value, ok := r[key]
	if !ok || value == nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return fmt.Sprint(v), true
	}
}

// Document is a preprocessed corpus entry.
type Document struct {
	// Index is the position of the document in the filtered input.
	Index  int
	ID     string
	Time   time.Time
	Text   string
	Tokens []string
	Fields Record
}

// Texts returns the token lists of docs in order.
func Texts(docs []Document) [][]string {
	out := make([][]string, len(docs))
	for i, doc := range docs {
		out[i] = doc.Tokens
	}
	return out
}

// Times returns the timestamps of docs in order.
func Times(docs []Document) []time.Time {
	out := make([]time.Time, len(docs))
	for i, doc := range docs {
		out[i] = doc.Time
	}
	return out
}

// SortByTime orders docs by timestamp, keeping input order for ties.
func SortByTime(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Time.Before(docs[j].Time)
	})
}

// TokenCount is a token and the number of times it occurs.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// MostCommon returns the n most frequent tokens across docs, most frequent
// first. Ties are broken alphabetically. n <= 0 returns every token.
func MostCommon(docs []Document, n int) []TokenCount {
	counts := map[string]int{}
	for _, doc := range docs {
		for _, tok := range doc.Tokens {
			counts[tok]++
		}
	}
	out := make([]TokenCount, 0, len(counts))
	for tok, c := range counts {
		out = append(out, TokenCount{Token: tok, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Token < out[j].Token
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
