package analysis

import (
	"sort"
	"testing"

	"github.com/blevesearch/bleve/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, c *Chain, text string) []string {
	t.Helper()
	m := bleve.NewIndexMapping()
	require.NoError(t, c.Register(m))

	a := m.AnalyzerNamed(AnalyzerName)
	require.NotNil(t, a, "analyzer %s not registered", AnalyzerName)

	var terms []string
	for _, token := range a.Analyze([]byte(text)) {
		terms = append(terms, string(token.Term))
	}
	return terms
}

func kinds(stages []Stage) []StageKind {
	out := make([]StageKind, len(stages))
	for i, s := range stages {
		out[i] = s.Kind
	}
	return out
}

func TestBuilder_Capabilities(t *testing.T) {
	b := NewBuilder(Options{})

	tests := []struct {
		lang      string
		stopwords bool
		stemmer   bool
	}{
		{"en", true, true},
		{"pt", true, true},
		{"de", true, true},
		{" EN ", true, true},
		{"xx", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			assert.Equal(t, tt.stopwords, b.SupportsStopwords(tt.lang), "SupportsStopwords(%q)", tt.lang)
			assert.Equal(t, tt.stemmer, b.SupportsStemmer(tt.lang), "SupportsStemmer(%q)", tt.lang)
		})
	}
}

func TestBuild_StageOrder(t *testing.T) {
	b := NewBuilder(Options{})
	c := b.Build([]string{"pt", "en", "xx"})

	assert.Equal(t, []string{"en", "pt", "xx"}, c.Languages())
	assert.Equal(t, []StageKind{
		StageTokenizer,
		StageNormalizer,
		StageNormalizer,
		StageStopwords,
		StageStopwords,
		StageStemmer,
		StageStemmer,
		StageFold,
	}, kinds(c.Stages()))

	stages := c.Stages()
	assert.Equal(t, "stop_en", stages[3].Name)
	assert.Equal(t, "stop_pt", stages[4].Name)
	assert.Equal(t, "en", stages[5].Language)
	assert.Equal(t, "pt", stages[6].Language)
}

func TestBuild_EmptyLanguages(t *testing.T) {
	c := NewBuilder(Options{}).Build(nil)

	assert.Empty(t, c.Languages())
	assert.Equal(t, []StageKind{StageTokenizer, StageNormalizer, StageNormalizer, StageFold}, kinds(c.Stages()))
}

func TestBuild_SingleFoldStage(t *testing.T) {
	b := NewBuilder(Options{})

	for _, langs := range [][]string{nil, {"en"}, {"en", "pt", "es", "fr", "de"}, {"xx", "yy"}} {
		c := b.Build(langs)
		folds := 0
		for _, s := range c.Stages() {
			if s.Kind == StageFold {
				folds++
			}
		}
		stages := c.Stages()
		assert.Equal(t, 1, folds, "languages %v", langs)
		assert.Equal(t, StageFold, stages[len(stages)-1].Kind, "languages %v", langs)
	}
}

func TestBuild_OrderIndependentAndRepeatable(t *testing.T) {
	b := NewBuilder(Options{})

	first := b.Build([]string{"en", "pt"})
	second := b.Build([]string{"pt", "en", "EN"})
	assert.Equal(t, first.Stages(), second.Stages())
	assert.Equal(t, first.Stages(), b.Build([]string{"en", "pt"}).Stages())
}

func TestChain_Analyze(t *testing.T) {
	b := NewBuilder(Options{})

	t.Run("english stopwords and stemming", func(t *testing.T) {
		terms := analyze(t, b.Build([]string{"en"}), "The running foxes")
		assert.Equal(t, []string{"run", "fox"}, terms)
	})

	t.Run("folding without languages", func(t *testing.T) {
		terms := analyze(t, b.Build(nil), "Naïve Résumé")
		assert.Equal(t, []string{"naive", "resume"}, terms)
	})

	t.Run("overlong tokens dropped", func(t *testing.T) {
		long := "supercalifragilisticexpialidocioussupercalifragilistic"
		terms := analyze(t, b.Build(nil), "short "+long)
		assert.Equal(t, []string{"short"}, terms)
	})
}

func TestBuild_CappedStopList(t *testing.T) {
	b := NewBuilder(Options{MaxStopwords: 5})
	c := b.Build([]string{"en"})

	var stopStage Stage
	for _, s := range c.Stages() {
		if s.Kind == StageStopwords {
			stopStage = s
		}
	}
	require.Equal(t, "washer_stop_en", stopStage.Name)

	words := c.stopList(stopStage.Name)
	require.Len(t, words, 5)
	assert.True(t, sort.StringsAreSorted(words))

	assert.Empty(t, analyze(t, c, words[0]))
}

func TestStageKind_String(t *testing.T) {
	assert.Equal(t, "tokenizer", StageTokenizer.String())
	assert.Equal(t, "fold", StageFold.String())
	assert.Equal(t, "StageKind(42)", StageKind(42).String())
}
