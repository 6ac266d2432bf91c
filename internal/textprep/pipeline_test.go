package textprep_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topicsweep/internal/textprep"
)

func TestPipelineRunsStagesInOrder(t *testing.T) {
	p, err := textprep.New(textprep.Options{
		ReplaceBefore: map[string]string{"New York": "newyork"},
		RemoveBefore:  []string{"reddit"},
		ReplaceAfter:  map[string]string{"comput": "computer"},
		RemoveAfter:   []string{"post"},
		StopWords:     true,
		Stem:          true,
	})
	require.NoError(t, err)

	tokens := p.Tokens("Reddit posts about New York computing and the Café")
	assert.Equal(t, []string{"newyork", "computer", "cafe"}, tokens)
}

func TestPipelineWithoutStemmingKeepsWords(t *testing.T) {
	p, err := textprep.New(textprep.Options{MinLength: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "is", "running"}, p.Tokens("Go is running!"))
}

func TestNewRejectsUnknownLanguage(t *testing.T) {
	_, err := textprep.New(textprep.Options{Stem: true, Language: "klingon"})
	require.Error(t, err)
}

func TestNewAcceptsLanguageCodes(t *testing.T) {
	p, err := textprep.New(textprep.Options{Stem: true, Language: "eng"})
	require.NoError(t, err)
	assert.Equal(t, []string{"topic", "model"}, p.Tokens("topics modeling"))
}

func TestPipelineConcurrentUse(t *testing.T) {
	p, err := textprep.New(textprep.Options{StopWords: true, Stem: true})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, []string{"topic", "model"}, p.Tokens("topics modeling"))
		}()
	}
	wg.Wait()
}

func TestFoldAndHelpers(t *testing.T) {
	assert.Equal(t, "creme brulee", textprep.Fold("Crème Brûlée"))
	assert.True(t, textprep.IsStopWord("The"))
	assert.False(t, textprep.IsStopWord("topic"))
	assert.Equal(t, "news_2021", textprep.SanitizeToken(" News/2021 "))
	assert.Equal(t, "unknown", textprep.SanitizeToken("***"))
}
