package highlight

import (
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/highlight"
	simplefragmenter "github.com/blevesearch/bleve/v2/search/highlight/fragmenter/simple"
	simplehighlighter "github.com/blevesearch/bleve/v2/search/highlight/highlighter/simple"
)

const (
	// DefaultFragments is the number of fragments shown per document.
	DefaultFragments = 5

	// DefaultFragmentSize is the approximate fragment width in bytes.
	DefaultFragmentSize = 200

	indent = "    "
)

// Options configures excerpt generation.
type Options struct {
	Fragments    int
	FragmentSize int
	LineBreak    string
}

// Highlighter builds excerpts from a document's text and the term locations
// reported by a search hit.
type Highlighter struct {
	fragments  int
	fragmenter *simplefragmenter.Fragmenter
	formatter  *Formatter
}

// New creates a Highlighter. Zero options take their defaults.
func New(opts Options, palette Palette) *Highlighter {
	if opts.Fragments <= 0 {
		opts.Fragments = DefaultFragments
	}
	if opts.FragmentSize <= 0 {
		opts.FragmentSize = DefaultFragmentSize
	}
	if opts.LineBreak == "" {
		opts.LineBreak = DefaultLineBreak
	}
	return &Highlighter{
		fragments:  opts.Fragments,
		fragmenter: simplefragmenter.NewFragmenter(opts.FragmentSize),
		formatter:  NewFormatter(palette, opts.LineBreak),
	}
}

// Excerpt returns formatted fragments of text around the given locations,
// best scoring first selection, emitted in document order. Locations that do
// not fit text are ignored; nil is returned when none remain.
func (h *Highlighter) Excerpt(text string, locations search.TermLocationMap) []string {
	orig := []byte(text)
	tlm := fitLocations(locations, len(orig))
	if len(tlm) == 0 {
		return nil
	}

	ordered := mergeOverlapping(highlight.OrderTermLocations(tlm))
	if len(ordered) == 0 {
		return nil
	}

	candidates := h.fragmenter.Fragment(orig, ordered)
	scorer := simplehighlighter.NewFragmentScorer(tlm)
	for _, f := range candidates {
		scorer.Score(f)
	}

	best := selectFragments(candidates, h.fragments)
	out := make([]string, 0, len(best))
	for _, f := range best {
		out = append(out, h.formatter.Format(f, ordered))
	}
	return out
}

// Render indents each fragment and puts it on its own line.
func Render(fragments []string) string {
	lines := make([]string, len(fragments))
	for i, f := range fragments {
		lines[i] = indent + f
	}
	return strings.Join(lines, "\n")
}

// fitLocations drops locations that fall outside a text of size n, which
// happens when the file changed after it was indexed.
func fitLocations(tlm search.TermLocationMap, n int) search.TermLocationMap {
	out := make(search.TermLocationMap, len(tlm))
	for term, locations := range tlm {
		var kept search.Locations
		for _, loc := range locations {
			if loc == nil || loc.End <= loc.Start || int(loc.End) > n {
				continue
			}
			kept = append(kept, loc)
		}
		if len(kept) > 0 {
			out[term] = kept
		}
	}
	return out
}

// mergeOverlapping joins locations whose byte ranges overlap. Input must be
// ordered by start offset.
func mergeOverlapping(locations highlight.TermLocations) highlight.TermLocations {
	merged := make(highlight.TermLocations, 0, len(locations))
	for _, loc := range locations {
		if loc == nil {
			continue
		}
		if n := len(merged); n > 0 && loc.Start < merged[n-1].End {
			if loc.End > merged[n-1].End {
				prev := *merged[n-1]
				prev.End = loc.End
				merged[n-1] = &prev
			}
			continue
		}
		merged = append(merged, loc)
	}
	return merged
}

// selectFragments picks up to n non-overlapping fragments by descending
// score and returns them in document order.
func selectFragments(candidates []*highlight.Fragment, n int) []*highlight.Fragment {
	ranked := append([]*highlight.Fragment(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Start < ranked[j].Start
	})

	var chosen []*highlight.Fragment
	for _, f := range ranked {
		if len(chosen) == n {
			break
		}
		overlaps := false
		for _, c := range chosen {
			if f.Start < c.End && c.Start < f.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			chosen = append(chosen, f)
		}
	}

	sort.Slice(chosen, func(i, j int) bool { return chosen[i].Start < chosen[j].Start })
	return chosen
}
