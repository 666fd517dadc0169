// Package highlight renders excerpts of a document's text with the query's
// matching tokens emphasized for terminal output.
package highlight

import (
	"strings"

	"github.com/blevesearch/bleve/v2/search/highlight"
	"github.com/muesli/termenv"
)

// DefaultLineBreak replaces line breaks inside an excerpt so each fragment
// stays on one terminal line.
const DefaultLineBreak = "¶ "

// SegmentKind distinguishes plain context from matched text.
type SegmentKind int

const (
	Neutral SegmentKind = iota
	Emphasis
)

// Segment is a contiguous run of fragment text.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Palette supplies the markers wrapped around neutral and emphasized text.
type Palette struct {
	Neutral  func(string) string
	Emphasis func(string) string
}

// PlainPalette leaves text unmarked.
func PlainPalette() Palette {
	identity := func(s string) string { return s }
	return Palette{Neutral: identity, Emphasis: identity}
}

// TerminalPalette renders context in cyan and matches in underlined green.
// With the Ascii profile the text passes through unstyled.
func TerminalPalette(out *termenv.Output) Palette {
	neutral := out.String().Foreground(out.Color("6"))
	emphasis := out.String().Foreground(out.Color("2")).Underline()
	return Palette{
		Neutral:  neutral.Styled,
		Emphasis: emphasis.Styled,
	}
}

// Segments splits a fragment into neutral and emphasized runs. Locations are
// expected in document order. The cursor only moves forward, so a location
// starting before it (an overlap) is skipped, and the walk stops at the first
// location that extends past the fragment end. The concatenated segment text
// always equals the fragment text.
func Segments(f *highlight.Fragment, locations highlight.TermLocations) []Segment {
	var segments []Segment
	cursor := f.Start

	for _, loc := range locations {
		if loc == nil || loc.End <= loc.Start {
			continue
		}
		if loc.Start < cursor {
			continue
		}
		if loc.End > f.End {
			break
		}
		if loc.Start > cursor {
			segments = append(segments, Segment{Kind: Neutral, Text: string(f.Orig[cursor:loc.Start])})
		}
		segments = append(segments, Segment{Kind: Emphasis, Text: string(f.Orig[loc.Start:loc.End])})
		cursor = loc.End
	}

	if cursor < f.End {
		segments = append(segments, Segment{Kind: Neutral, Text: string(f.Orig[cursor:f.End])})
	}
	return segments
}

// Formatter renders fragments with a Palette. It implements
// highlight.FragmentFormatter.
type Formatter struct {
	palette   Palette
	lineBreak *strings.Replacer
}

// NewFormatter creates a Formatter replacing line breaks with glyph.
func NewFormatter(palette Palette, glyph string) *Formatter {
	return &Formatter{
		palette:   palette,
		lineBreak: strings.NewReplacer("\r\n", glyph, "\n", glyph, "\r", glyph),
	}
}

// Format implements highlight.FragmentFormatter.
func (f *Formatter) Format(fragment *highlight.Fragment, orderedTermLocations highlight.TermLocations) string {
	var sb strings.Builder
	for _, s := range Segments(fragment, orderedTermLocations) {
		switch s.Kind {
		case Emphasis:
			sb.WriteString(f.palette.Emphasis(s.Text))
		default:
			sb.WriteString(f.palette.Neutral(s.Text))
		}
	}
	return f.lineBreak.Replace(sb.String())
}

var _ highlight.FragmentFormatter = (*Formatter)(nil)
