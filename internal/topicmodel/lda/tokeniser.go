package lda

import (
	"strings"

	"github.com/e-gun/nlp"
)

// tokenSep joins preprocessed tokens into the single string the nlp pipeline
// takes. It cannot occur inside a token, so tokens containing spaces survive.
const tokenSep = "\x1f"

// tokenTokeniser hands already-preprocessed tokens to the vectoriser
// unchanged. The nlp default keeps letter runs only.
type tokenTokeniser struct {
	stop map[string]struct{}
}

var _ nlp.Tokeniser = (*tokenTokeniser)(nil)

func newTokenTokeniser(stopWords []string) *tokenTokeniser {
	stop := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stop[w] = struct{}{}
	}
	return &tokenTokeniser{stop: stop}
}

func joinTokens(tokens []string) string {
	return strings.Join(tokens, tokenSep)
}

func (t *tokenTokeniser) ForEachIn(text string, f func(token string)) {
	for _, token := range strings.Split(text, tokenSep) {
		if token == "" {
			continue
		}
		if _, ok := t.stop[token]; ok {
			continue
		}
		f(token)
	}
}

func (t *tokenTokeniser) Tokenise(text string) []string {
	var out []string
	t.ForEachIn(text, func(token string) { out = append(out, token) })
	return out
}
