package textindex

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/sha1n/washer/internal/analysis"
)

// Operator is the implicit operator between query clauses.
type Operator string

const (
	OperatorAnd Operator = "and"
	OperatorOr  Operator = "or"
)

// ErrEmptyQuery is returned for queries without any clause.
var ErrEmptyQuery = errors.New("empty query")

// ParseOperator parses "and" or "or", case-insensitively.
func ParseOperator(s string) (Operator, error) {
	switch Operator(strings.ToLower(strings.TrimSpace(s))) {
	case OperatorAnd:
		return OperatorAnd, nil
	case OperatorOr:
		return OperatorOr, nil
	default:
		return "", fmt.Errorf("unknown query operator %q, expected 'and' or 'or'", s)
	}
}

// QuerySyntaxError reports a query the engine could not parse. Its message
// is the parser's message, unchanged.
type QuerySyntaxError struct {
	Query string
	Err   error
}

func (e *QuerySyntaxError) Error() string {
	return e.Err.Error()
}

func (e *QuerySyntaxError) Unwrap() error {
	return e.Err
}

// ParseQuery parses user query text. Bare clauses are matched against
// field; op joins clauses that carry no explicit operator.
func ParseQuery(text, field string, op Operator) (query.Query, error) {
	rewritten, err := RewriteQuery(text, field, op)
	if err != nil {
		return nil, &QuerySyntaxError{Query: text, Err: err}
	}

	q, err := bleve.NewQueryStringQuery(rewritten).Parse()
	if err != nil {
		return nil, &QuerySyntaxError{Query: text, Err: err}
	}
	return q, nil
}

type occur int

const (
	occurDefault occur = iota
	occurMust
	occurShould
	occurMustNot
)

type clause struct {
	body  string
	occur occur
}

// RewriteQuery translates the AND, OR and NOT keywords into the engine's
// required, optional and excluded clause prefixes. Explicit +/- prefixes are
// kept. AND marks both neighbors required; OR makes both optional unless
// already required.
func RewriteQuery(text, field string, op Operator) (string, error) {
	tokens := splitClauses(text)
	if len(tokens) == 0 {
		return "", ErrEmptyQuery
	}

	var clauses []clause
	binary := ""
	negate := false
	for _, tok := range tokens {
		switch tok {
		case "AND", "OR":
			if len(clauses) == 0 || binary != "" || negate {
				return "", fmt.Errorf("operator %s must follow a term", tok)
			}
			last := &clauses[len(clauses)-1]
			if last.occur == occurDefault {
				if tok == "AND" {
					last.occur = occurMust
				} else {
					last.occur = occurShould
				}
			}
			binary = tok
		case "NOT":
			if negate {
				return "", errors.New("operator NOT must be followed by a term")
			}
			negate = true
		default:
			c := parseClause(tok)
			switch {
			case negate:
				c.occur = occurMustNot
			case c.occur != occurDefault:
			case binary == "AND":
				c.occur = occurMust
			case binary == "OR":
				c.occur = occurShould
			}
			clauses = append(clauses, c)
			binary, negate = "", false
		}
	}

	if binary != "" {
		return "", fmt.Errorf("query ends with operator %s", binary)
	}
	if negate {
		return "", errors.New("query ends with operator NOT")
	}

	parts := make([]string, len(clauses))
	for i, c := range clauses {
		o := c.occur
		if o == occurDefault {
			if op == OperatorOr {
				o = occurShould
			} else {
				o = occurMust
			}
		}

		prefix := ""
		switch o {
		case occurMust:
			prefix = "+"
		case occurMustNot:
			prefix = "-"
		}
		parts[i] = prefix + qualify(normalizePattern(c.body, field), field)
	}
	return strings.Join(parts, " "), nil
}

// splitClauses splits on whitespace outside of double quotes, keeping escape
// sequences intact.
func splitClauses(text string) []string {
	var tokens []string
	var sb strings.Builder
	inQuote, escaped := false, false

	flush := func() {
		if sb.Len() > 0 {
			tokens = append(tokens, sb.String())
			sb.Reset()
		}
	}

	for _, r := range text {
		switch {
		case escaped:
			sb.WriteRune(r)
			escaped = false
		case r == '\\':
			sb.WriteRune(r)
			escaped = true
		case r == '"':
			sb.WriteRune(r)
			inQuote = !inQuote
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			sb.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func parseClause(tok string) clause {
	if len(tok) > 1 {
		switch tok[0] {
		case '+':
			return clause{body: tok[1:], occur: occurMust}
		case '-':
			return clause{body: tok[1:], occur: occurMustNot}
		}
	}
	return clause{body: tok}
}

// normalizePattern lowercases and accent-folds wildcard and fuzzy clauses
// on field, since the engine matches them against indexed terms without
// analysis. Clauses on other fields, phrases and regexps are left alone.
func normalizePattern(body, field string) string {
	value := body
	if hasField(body) {
		name, rest, _ := strings.Cut(body, ":")
		if name != field {
			return body
		}
		value = rest
	}

	if value == "" || value[0] == '/' || strings.ContainsRune(value, '"') {
		return body
	}
	if !strings.ContainsAny(value, "*?~") {
		return body
	}

	folded := string(analysis.Fold([]byte(strings.ToLower(value))))
	return body[:len(body)-len(value)] + folded
}

// qualify prefixes body with field unless it already names one.
func qualify(body, field string) string {
	if field == "" || hasField(body) {
		return body
	}
	return field + ":" + body
}

func hasField(body string) bool {
	escaped := false
	for i, r := range body {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			return false
		case r == ':':
			return i > 0
		}
	}
	return false
}
