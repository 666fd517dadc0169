// Package textindex adapts bleve to the operations the indexer and searcher
// need: build-and-swap index creation, read-only sessions, query parsing and
// term statistics.
package textindex

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/sha1n/washer/internal/analysis"
	"github.com/sha1n/washer/internal/domain"
)

// NewMapping creates the index mapping for documents analyzed with chain.
func NewMapping(chain *analysis.Chain) (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()
	if err := chain.Register(indexMapping); err != nil {
		return nil, fmt.Errorf("failed to register analysis chain: %w", err)
	}

	docMapping := bleve.NewDocumentMapping()

	// Content field - analyzed with term vectors for highlighting, never stored
	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = analysis.AnalyzerName
	contentField.Store = false
	contentField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt(domain.FieldContent, contentField)

	// Path - keyword, stored for display
	pathField := bleve.NewTextFieldMapping()
	pathField.Analyzer = keyword.Name
	pathField.Store = true
	pathField.IncludeInAll = false
	pathField.IncludeTermVectors = false
	docMapping.AddFieldMappingsAt(domain.FieldPath, pathField)

	// Encoding - keyword, stored so excerpts re-decode the file the same way
	encodingField := bleve.NewTextFieldMapping()
	encodingField.Analyzer = keyword.Name
	encodingField.Store = true
	encodingField.IncludeInAll = false
	encodingField.IncludeTermVectors = false
	docMapping.AddFieldMappingsAt(domain.FieldEncoding, encodingField)

	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = analysis.AnalyzerName
	indexMapping.DefaultField = domain.FieldContent

	return indexMapping, nil
}
