// Package analysis builds the text analysis chain used for indexing and
// querying, driven by the set of languages the user asks for.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/length"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/stop"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/analysis/tokenmap"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"

	// Languages with stop word lists and stemmers
	_ "github.com/blevesearch/bleve/v2/analysis/lang/ar"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/bg"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/ca"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/ckb"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/cs"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/da"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/de"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/el"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/en"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/es"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/eu"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/fa"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/fi"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/fr"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/ga"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/gl"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/hi"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/hu"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/hy"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/id"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/it"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/nl"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/no"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/pt"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/ro"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/ru"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/sv"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/tr"
)

const (
	// AnalyzerName is the name the chain is registered under in an index mapping.
	AnalyzerName = "washer"

	// LengthFilterName is the mapping-local name of the token length filter.
	LengthFilterName = "washer_length"

	// DefaultMaxStopwords caps the size of a single language's stop list.
	DefaultMaxStopwords = 500

	// DefaultMaxTokenLength drops tokens longer than this many bytes.
	DefaultMaxTokenLength = 40

	cappedStopPrefix = "washer_stop_"
)

// StageKind identifies the role of a stage in a Chain.
type StageKind int

const (
	StageTokenizer StageKind = iota
	StageNormalizer
	StageStopwords
	StageStemmer
	StageFold
)

func (k StageKind) String() string {
	switch k {
	case StageTokenizer:
		return "tokenizer"
	case StageNormalizer:
		return "normalizer"
	case StageStopwords:
		return "stopwords"
	case StageStemmer:
		return "stemmer"
	case StageFold:
		return "fold"
	default:
		return fmt.Sprintf("StageKind(%d)", int(k))
	}
}

// Stage is one step of an analysis chain. Name is the tokenizer or token
// filter name the stage resolves to.
type Stage struct {
	Kind     StageKind
	Name     string
	Language string
}

// Options tunes chain construction.
type Options struct {
	MaxStopwords   int
	MaxTokenLength int
}

// Builder constructs analysis chains from language codes.
type Builder struct {
	opts  Options
	cache *registry.Cache
}

// NewBuilder creates a Builder. Zero options take their defaults.
func NewBuilder(opts Options) *Builder {
	if opts.MaxStopwords <= 0 {
		opts.MaxStopwords = DefaultMaxStopwords
	}
	if opts.MaxTokenLength <= 0 {
		opts.MaxTokenLength = DefaultMaxTokenLength
	}
	return &Builder{
		opts:  opts,
		cache: registry.NewCache(),
	}
}

// SupportsStopwords reports whether a stop word list exists for lang.
func (b *Builder) SupportsStopwords(lang string) bool {
	_, err := b.cache.TokenFilterNamed(stopFilterName(normalizeLanguage(lang)))
	return err == nil
}

// SupportsStemmer reports whether a stemmer exists for lang.
func (b *Builder) SupportsStemmer(lang string) bool {
	return b.stemmerFor(normalizeLanguage(lang)) != ""
}

func (b *Builder) stemmerFor(lang string) string {
	if lang == "" {
		return ""
	}
	for _, name := range []string{
		"stemmer_" + lang + "_snowball",
		"stemmer_" + lang + "_light",
		"stemmer_" + lang,
	} {
		if _, err := b.cache.TokenFilterNamed(name); err == nil {
			return name
		}
	}
	return ""
}

// Build returns the analysis chain for languages. Unsupported languages
// contribute nothing; an empty set yields tokenization, normalization and
// folding only. The result depends on the set of languages, not their order.
func (b *Builder) Build(languages []string) *Chain {
	langs := normalizeLanguages(languages)

	c := &Chain{
		languages:      langs,
		maxTokenLength: b.opts.MaxTokenLength,
		stopLists:      make(map[string][]string),
	}
	c.stages = append(c.stages,
		Stage{Kind: StageTokenizer, Name: unicode.Name},
		Stage{Kind: StageNormalizer, Name: lowercase.Name},
		Stage{Kind: StageNormalizer, Name: LengthFilterName},
	)

	for _, lang := range langs {
		if !b.SupportsStopwords(lang) {
			continue
		}
		name := stopFilterName(lang)
		if words, capped := b.cappedStopList(lang); capped {
			name = cappedStopPrefix + lang
			c.stopLists[name] = words
		}
		c.stages = append(c.stages, Stage{Kind: StageStopwords, Name: name, Language: lang})
	}

	for _, lang := range langs {
		if name := b.stemmerFor(lang); name != "" {
			c.stages = append(c.stages, Stage{Kind: StageStemmer, Name: name, Language: lang})
		}
	}

	c.stages = append(c.stages, Stage{Kind: StageFold, Name: AccentFoldName})
	return c
}

// cappedStopList returns the first MaxStopwords entries of lang's stop list in
// sorted order when the list exceeds the cap.
func (b *Builder) cappedStopList(lang string) ([]string, bool) {
	tokens, err := b.cache.TokenMapNamed(stopFilterName(lang))
	if err != nil || len(tokens) <= b.opts.MaxStopwords {
		return nil, false
	}

	words := make([]string, 0, len(tokens))
	for word := range tokens {
		words = append(words, word)
	}
	sort.Strings(words)
	return words[:b.opts.MaxStopwords], true
}

// Chain is an immutable, ordered analysis pipeline.
type Chain struct {
	languages      []string
	stages         []Stage
	stopLists      map[string][]string
	maxTokenLength int
}

// Languages returns the normalized language set the chain was built from.
func (c *Chain) Languages() []string {
	return append([]string(nil), c.languages...)
}

// Stages returns the chain's stages in application order.
func (c *Chain) Stages() []Stage {
	return append([]Stage(nil), c.stages...)
}

// stopList returns the words of a capped stop list stage.
func (c *Chain) stopList(name string) []string {
	return append([]string(nil), c.stopLists[name]...)
}

// Register defines the chain as the custom analyzer AnalyzerName in m.
func (c *Chain) Register(m *mapping.IndexMappingImpl) error {
	names := make([]string, 0, len(c.stopLists))
	for name := range c.stopLists {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		words := c.stopList(name)
		tokens := make([]interface{}, len(words))
		for i, w := range words {
			tokens[i] = w
		}
		if err := m.AddCustomTokenMap(name, map[string]interface{}{
			"type":   tokenmap.Name,
			"tokens": tokens,
		}); err != nil {
			return fmt.Errorf("failed to add stop list %s: %w", name, err)
		}
		if err := m.AddCustomTokenFilter(name, map[string]interface{}{
			"type":           stop.Name,
			"stop_token_map": name,
		}); err != nil {
			return fmt.Errorf("failed to add stop filter %s: %w", name, err)
		}
	}

	if err := m.AddCustomTokenFilter(LengthFilterName, map[string]interface{}{
		"type": length.Name,
		"min":  float64(1),
		"max":  float64(c.maxTokenLength),
	}); err != nil {
		return fmt.Errorf("failed to add length filter: %w", err)
	}

	var tokenizer string
	filters := make([]string, 0, len(c.stages))
	for _, s := range c.stages {
		if s.Kind == StageTokenizer {
			tokenizer = s.Name
			continue
		}
		filters = append(filters, s.Name)
	}

	if err := m.AddCustomAnalyzer(AnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     tokenizer,
		"token_filters": filters,
	}); err != nil {
		return fmt.Errorf("failed to add custom analyzer: %w", err)
	}
	return nil
}

func stopFilterName(lang string) string {
	return "stop_" + lang
}

func normalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

func normalizeLanguages(languages []string) []string {
	seen := make(map[string]bool, len(languages))
	langs := make([]string, 0, len(languages))
	for _, lang := range languages {
		lang = normalizeLanguage(lang)
		if lang == "" || seen[lang] {
			continue
		}
		seen[lang] = true
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
