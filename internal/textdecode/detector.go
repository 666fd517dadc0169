// Package textdecode turns raw file bytes into text by trying an ordered list
// of candidate encodings and falling back to lossy UTF-8.
package textdecode

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	xunicode "golang.org/x/text/encoding/unicode"
)

// DefaultEncodings is the candidate order used when none is configured.
// UTF-8 comes first because it is the only candidate that rejects most
// non-matching input on its own.
var DefaultEncodings = []string{
	"utf-8",
	"windows-1252",
	"windows-1251",
	"koi8-r",
	"shift_jis",
	"euc-jp",
	"iso-2022-jp",
	"euc-kr",
	"gbk",
	"big5",
}

// Result is the outcome of decoding a byte sequence.
type Result struct {
	Text     string
	Encoding string
	// Lossy is set when no candidate decoded the input strictly and invalid
	// sequences were replaced with U+FFFD.
	Lossy bool
}

type candidate struct {
	name string
	enc  encoding.Encoding
}

// Detector decodes bytes using an ordered list of candidate encodings.
// A Detector is immutable and safe for concurrent use.
type Detector struct {
	candidates []candidate
}

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// New creates a Detector trying the named encodings in order. Names are
// resolved with the WHATWG encoding labels, so aliases such as "latin1" or
// "cp1251" are accepted.
func New(names ...string) (*Detector, error) {
	if len(names) == 0 {
		names = DefaultEncodings
	}

	d := &Detector{candidates: make([]candidate, 0, len(names))}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		enc, err := htmlindex.Get(name)
		if err != nil {
			return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
		}
		if canonical, err := htmlindex.Name(enc); err == nil {
			name = canonical
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		d.candidates = append(d.candidates, candidate{name: name, enc: enc})
	}

	if len(d.candidates) == 0 {
		return nil, fmt.Errorf("no encodings configured")
	}
	return d, nil
}

// Default returns a Detector over DefaultEncodings.
func Default() *Detector {
	d, err := New(DefaultEncodings...)
	if err != nil {
		panic(err)
	}
	return d
}

// Names returns the canonical candidate names in trial order.
func (d *Detector) Names() []string {
	names := make([]string, len(d.candidates))
	for i, c := range d.candidates {
		names[i] = c.name
	}
	return names
}

// Decode returns the text of b under the first candidate that decodes it
// strictly. It never fails: when every candidate rejects the input, b is
// decoded as UTF-8 with invalid sequences replaced.
func (d *Detector) Decode(b []byte) Result {
	if len(b) == 0 {
		return Result{Encoding: d.candidates[0].name}
	}

	if res, ok := decodeBOM(b); ok {
		return res
	}

	for _, c := range d.candidates {
		if text, ok := decodeStrict(c, b); ok {
			return Result{Text: text, Encoding: c.name}
		}
	}

	return Result{Text: decodeLossy(b), Encoding: "utf-8", Lossy: true}
}

// DecodeAs decodes b with the named encoding first, falling back to Decode
// when the name is unknown or the bytes no longer decode under it. A
// byte-order mark takes precedence over name, as it does in Decode, so both
// produce the same text for the same bytes.
func (d *Detector) DecodeAs(name string, b []byte) Result {
	if res, ok := decodeBOM(b); ok {
		return res
	}
	if name != "" && len(b) > 0 {
		if enc, err := htmlindex.Get(name); err == nil {
			if text, ok := decodeStrict(candidate{name: name, enc: enc}, b); ok {
				return Result{Text: text, Encoding: name}
			}
		}
	}
	return d.Decode(b)
}

func decodeBOM(b []byte) (Result, bool) {
	switch {
	case bytes.HasPrefix(b, utf8BOM):
		rest := b[len(utf8BOM):]
		if utf8.Valid(rest) {
			return Result{Text: string(rest), Encoding: "utf-8"}, true
		}
	case bytes.HasPrefix(b, utf16LEBOM):
		dec := xunicode.UTF16(xunicode.LittleEndian, xunicode.ExpectBOM).NewDecoder()
		if out, err := dec.Bytes(b); err == nil && !bytes.ContainsRune(out, utf8.RuneError) {
			return Result{Text: string(out), Encoding: "utf-16le"}, true
		}
	case bytes.HasPrefix(b, utf16BEBOM):
		dec := xunicode.UTF16(xunicode.BigEndian, xunicode.ExpectBOM).NewDecoder()
		if out, err := dec.Bytes(b); err == nil && !bytes.ContainsRune(out, utf8.RuneError) {
			return Result{Text: string(out), Encoding: "utf-16be"}, true
		}
	}
	return Result{}, false
}

func decodeStrict(c candidate, b []byte) (string, bool) {
	if c.name == "utf-8" {
		if utf8.Valid(b) {
			return string(b), true
		}
		return "", false
	}

	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	if !plausible(out) {
		return "", false
	}
	return string(out), true
}

// plausible rejects legacy decodes that produced replacement characters or
// control characters, which single-byte code pages emit for unmapped bytes.
func plausible(text []byte) bool {
	for len(text) > 0 {
		r, size := utf8.DecodeRune(text)
		text = text[size:]
		switch {
		case r == utf8.RuneError:
			return false
		case r == '\t', r == '\n', r == '\v', r == '\f', r == '\r':
		case r < 0x20, r == 0x7F, r >= 0x80 && r <= 0x9F:
			return false
		}
	}
	return true
}

func decodeLossy(b []byte) string {
	out, err := xunicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}
