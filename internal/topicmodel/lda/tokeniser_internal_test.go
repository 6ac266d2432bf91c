package lda

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenTokeniserPassesTokensThrough(t *testing.T) {
	tok := newTokenTokeniser([]string{"the"})
	text := joinTokens([]string{"covid19", "the", "G20", "", "new york"})
	assert.Equal(t, []string{"covid19", "G20", "new york"}, tok.Tokenise(text))

	var seen []string
	tok.ForEachIn(text, func(token string) { seen = append(seen, token) })
	assert.Equal(t, []string{"covid19", "G20", "new york"}, seen)

	assert.Empty(t, tok.Tokenise(""))
}
