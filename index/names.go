package index

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

var errIndexClosed = errors.New("index closed")

// nameIndex is a Bleve in-memory index over filename tokens, used to suggest
// near misses for mentions the resolver could not place.
type nameIndex struct {
	index bleve.Index
}

// nameDocument is the document structure stored in Bleve.
type nameDocument struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func buildNameMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Store = false
	nameFieldMapping.IncludeInAll = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	pathFieldMapping := bleve.NewKeywordFieldMapping()
	pathFieldMapping.Store = true
	pathFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("path", pathFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func newNameIndex(files []*IndexedFile) (*nameIndex, error) {
	bleveIndex, err := bleve.NewMemOnly(buildNameMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}

	batch := bleveIndex.NewBatch()
	for _, file := range files {
		doc := nameDocument{
			Name: strings.Join(file.Tokens, " "),
			Path: file.RelativePath,
		}
		if err := batch.Index(file.RelativePath, doc); err != nil {
			bleveIndex.Close()
			return nil, fmt.Errorf("indexing name %s: %w", file.RelativePath, err)
		}
	}
	if err := bleveIndex.Batch(batch); err != nil {
		bleveIndex.Close()
		return nil, fmt.Errorf("committing name batch: %w", err)
	}
	return &nameIndex{index: bleveIndex}, nil
}

func (n *nameIndex) close() error {
	return n.index.Close()
}

// Suggest returns up to maxResults files whose name tokens fuzzily match the words of query.
// The Bleve index is built on first use.
func (idx *WorkspaceFileIndex) Suggest(query string, maxResults int) ([]*IndexedFile, error) {
	idx.namesOnce.Do(func() {
		idx.names, idx.namesErr = newNameIndex(idx.files)
	})
	if idx.namesErr != nil {
		return nil, idx.namesErr
	}

	words := SplitIdentifier(query)
	if len(words) == 0 {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	matchQuery := bleve.NewMatchQuery(strings.Join(words, " "))
	matchQuery.SetField("name")
	matchQuery.SetFuzziness(1)

	searchRequest := bleve.NewSearchRequestOptions(matchQuery, maxResults, 0, false)
	searchResults, err := idx.names.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("searching names: %w", err)
	}

	suggestions := make([]*IndexedFile, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		if file, ok := idx.byRelative[hit.ID]; ok {
			suggestions = append(suggestions, file)
		}
	}
	return suggestions, nil
}
