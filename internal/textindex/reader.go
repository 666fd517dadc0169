package textindex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"
	index "github.com/blevesearch/bleve_index_api"
	"github.com/sha1n/washer/internal/domain"
)

// ErrIndexNotFound is returned when opening a directory that holds no index
var ErrIndexNotFound = errors.New("no index found")

// Hit is a single search result.
type Hit struct {
	ID       string
	Path     string
	Encoding string
	Score    float64
	// Locations holds the matched terms of the content field and where they
	// occur in the indexed text.
	Locations search.TermLocationMap
}

// MatchedTerms returns the distinct indexed terms that matched, sorted.
func (h Hit) MatchedTerms() []string {
	terms := make([]string, 0, len(h.Locations))
	for term := range h.Locations {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Results is the outcome of a search.
type Results struct {
	Hits []Hit
	// Total is the number of matching documents the engine reported.
	Total uint64
	// Failed counts index partitions that did not answer; when non-zero,
	// Total is a lower bound.
	Failed int
}

// TermStats holds index statistics for one analyzed term.
type TermStats struct {
	Term string
	// DocFreq is the number of documents containing the term.
	DocFreq uint64
	// TermFreq is the total number of occurrences across all documents.
	TermFreq uint64
}

// Reader is a read-only session on an index.
type Reader struct {
	dir     string
	index   bleve.Index
	meta    Metadata
	hasMeta bool
}

// Open opens the index at dir for reading.
func Open(dir string) (*Reader, error) {
	if !Exists(dir) {
		return nil, fmt.Errorf("%w at %s", ErrIndexNotFound, dir)
	}

	idx, err := bleve.OpenUsing(dir, map[string]interface{}{"read_only": true})
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	meta, ok, err := LoadMetadata(dir)
	if err != nil {
		_ = idx.Close()
		return nil, err
	}

	return &Reader{
		dir:     dir,
		index:   idx,
		meta:    meta,
		hasMeta: ok,
	}, nil
}

// Dir returns the index directory.
func (r *Reader) Dir() string {
	return r.dir
}

// Metadata returns the index sidecar. The boolean is false when the index
// has none.
func (r *Reader) Metadata() (Metadata, bool) {
	return r.meta, r.hasMeta
}

// Close ends the session.
func (r *Reader) Close() error {
	return r.index.Close()
}

// ParseQuery parses text against field. See ParseQuery.
func (r *Reader) ParseQuery(field, text string, op Operator) (query.Query, error) {
	return ParseQuery(text, field, op)
}

// DocumentCount returns the number of indexed documents.
func (r *Reader) DocumentCount() (uint64, error) {
	return r.index.DocCount()
}

// Search runs q and returns up to limit hits with their term locations.
func (r *Reader) Search(ctx context.Context, q query.Query, limit int) (*Results, error) {
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{domain.FieldPath, domain.FieldEncoding}
	req.IncludeLocations = true

	res, err := r.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := &Results{
		Hits:  make([]Hit, 0, len(res.Hits)),
		Total: res.Total,
	}
	if res.Status != nil {
		results.Failed = res.Status.Failed
	}

	for _, dm := range res.Hits {
		hit := Hit{
			ID:        dm.ID,
			Score:     dm.Score,
			Locations: dm.Locations[domain.FieldContent],
		}
		if val, ok := dm.Fields[domain.FieldPath].(string); ok {
			hit.Path = val
		}
		if val, ok := dm.Fields[domain.FieldEncoding].(string); ok {
			hit.Encoding = val
		}
		results.Hits = append(results.Hits, hit)
	}

	return results, nil
}

// AnalyzeTerms runs text through field's analyzer and returns the terms as
// they are stored in the index.
func (r *Reader) AnalyzeTerms(field, text string) ([]string, error) {
	m := r.index.Mapping()
	analyzer := m.AnalyzerNamed(m.AnalyzerNameForPath(field))
	if analyzer == nil {
		return nil, fmt.Errorf("no analyzer for field %s", field)
	}

	tokens := analyzer.Analyze([]byte(text))
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		terms = append(terms, string(token.Term))
	}
	return terms, nil
}

// TermStats analyzes text and reports statistics for each distinct term,
// in order of first appearance.
func (r *Reader) TermStats(ctx context.Context, field, text string) (stats []TermStats, err error) {
	terms, err := r.AnalyzeTerms(field, text)
	if err != nil {
		return nil, err
	}

	reader, err := r.indexReader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		if seen[term] {
			continue
		}
		seen[term] = true

		st, err := termStats(ctx, reader, field, term)
		if err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, nil
}

func termStats(ctx context.Context, reader index.IndexReader, field, term string) (st TermStats, err error) {
	tfr, err := reader.TermFieldReader(ctx, []byte(term), field, true, false, false)
	if err != nil {
		return TermStats{}, fmt.Errorf("failed to read term %q: %w", term, err)
	}
	defer func() {
		if cerr := tfr.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	st = TermStats{Term: term, DocFreq: tfr.Count()}
	for {
		doc, err := tfr.Next(nil)
		if err != nil {
			return TermStats{}, fmt.Errorf("failed to read term %q: %w", term, err)
		}
		if doc == nil {
			break
		}
		st.TermFreq += doc.Freq
	}
	return st, nil
}

// TopTerms returns up to n terms of field with the highest document
// frequency. TermFreq is not populated.
func (r *Reader) TopTerms(field string, n int) (top []TermStats, err error) {
	dict, err := r.index.FieldDict(field)
	if err != nil {
		return nil, fmt.Errorf("failed to read field dictionary: %w", err)
	}
	defer func() {
		if cerr := dict.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var all []TermStats
	for {
		entry, err := dict.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read field dictionary: %w", err)
		}
		if entry == nil {
			break
		}
		all = append(all, TermStats{Term: entry.Term, DocFreq: entry.Count})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].DocFreq != all[j].DocFreq {
			return all[i].DocFreq > all[j].DocFreq
		}
		return all[i].Term < all[j].Term
	})
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

type weightedTerm struct {
	term   string
	weight float64
}

// MoreLike finds documents similar to text. The maxTerms most significant
// terms of text, weighted by tf-idf, are combined into a boosted disjunction.
// The document with ID exclude, if any, is left out of the results.
func (r *Reader) MoreLike(ctx context.Context, exclude, field, text string, maxTerms, limit int) (results *Results, err error) {
	terms, err := r.AnalyzeTerms(field, text)
	if err != nil {
		return nil, err
	}

	tf := make(map[string]int, len(terms))
	for _, term := range terms {
		tf[term]++
	}

	total, err := r.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	reader, err := r.indexReader()
	if err != nil {
		return nil, err
	}

	weighted := make([]weightedTerm, 0, len(tf))
	for term, freq := range tf {
		st, err := termStats(ctx, reader, field, term)
		if err != nil {
			_ = reader.Close()
			return nil, err
		}
		if st.DocFreq == 0 {
			continue
		}
		idf := math.Log(1 + float64(total)/float64(st.DocFreq))
		weighted = append(weighted, weightedTerm{term: term, weight: float64(freq) * idf})
	}
	if err := reader.Close(); err != nil {
		return nil, err
	}

	if len(weighted) == 0 {
		return &Results{}, nil
	}

	sort.Slice(weighted, func(i, j int) bool {
		if weighted[i].weight != weighted[j].weight {
			return weighted[i].weight > weighted[j].weight
		}
		return weighted[i].term < weighted[j].term
	})
	if len(weighted) > maxTerms {
		weighted = weighted[:maxTerms]
	}

	should := make([]query.Query, 0, len(weighted))
	for _, w := range weighted {
		tq := query.NewTermQuery(w.term)
		tq.SetField(field)
		tq.SetBoost(w.weight)
		should = append(should, tq)
	}

	var mustNot []query.Query
	if exclude != "" {
		mustNot = append(mustNot, query.NewDocIDQuery([]string{exclude}))
	}

	bq := query.NewBooleanQuery(nil, should, mustNot)
	bq.SetMinShould(1)
	return r.Search(ctx, bq, limit)
}

func (r *Reader) indexReader() (index.IndexReader, error) {
	idx, err := r.index.Advanced()
	if err != nil {
		return nil, fmt.Errorf("failed to access index: %w", err)
	}
	reader, err := idx.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open index reader: %w", err)
	}
	return reader, nil
}
