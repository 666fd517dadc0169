package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// AccentFoldName is the registry name of the accent folding token filter.
const AccentFoldName = "accent_fold"

func init() {
	_ = registry.RegisterTokenFilter(AccentFoldName, accentFoldConstructor)
}

// Letters that carry no combining mark under NFD but still have an
// unaccented spelling.
var ligatures = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"Æ", "AE",
	"œ", "oe",
	"Œ", "OE",
	"ø", "o",
	"Ø", "O",
	"đ", "d",
	"Đ", "D",
	"ł", "l",
	"Ł", "L",
	"ı", "i",
	"ħ", "h",
	"Ħ", "H",
	"þ", "th",
	"Þ", "TH",
)

// Fold maps accented characters in term to their unaccented counterparts.
// ASCII input is returned as is.
func Fold(term []byte) []byte {
	if isASCII(term) {
		return term
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.Bytes(t, term)
	if err != nil {
		return term
	}
	return []byte(ligatures.Replace(string(folded)))
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

type accentFoldFilter struct{}

// Filter implements analysis.TokenFilter.
func (accentFoldFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	for _, token := range input {
		token.Term = Fold(token.Term)
	}
	return input
}

func accentFoldConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.TokenFilter, error) {
	return accentFoldFilter{}, nil
}
