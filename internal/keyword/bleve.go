package keyword

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

// chunkDoc is the indexed form of an Entry.
type chunkDoc struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Position   float64 `json:"position"`
	Text       string  `json:"text"`
}

// BleveIndex implements ChunkIndex with a memory-only Bleve index. It is
// rebuilt on every start, like the vector store it mirrors.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates an empty in-memory index.
func NewBleveIndex() (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer lowercases and tokenizes without stemming, so statute
	// names and defined terms match as written.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("document_id", bleve.NewKeywordFieldMapping())
	docMapping.AddFieldMappingsAt("position", bleve.NewNumericFieldMapping())
	im.AddDocumentMapping("chunk", docMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Add indexes entries in one batch.
func (b *BleveIndex) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	batch := b.index.NewBatch()
	for _, e := range entries {
		doc := chunkDoc{
			DocumentID: e.DocumentID,
			Title:      e.Title,
			Position:   float64(e.Position),
			Text:       e.Text,
		}
		if err := batch.Index(e.ID(), doc); err != nil {
			return fmt.Errorf("batch chunk %s: %w", e.ID(), err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}
	return nil
}

// Search runs a match query over chunk text (and title, when boosted) and
// returns up to limit hits with their stored fields.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return []*Result{}, nil
	}
	fuzziness := 0
	titleBoost := 0.0
	if opts != nil {
		if opts.Fuzzy {
			fuzziness = 1
			if opts.Fuzziness > 0 {
				fuzziness = opts.Fuzziness
			}
		}
		titleBoost = opts.TitleBoost
	}

	textQuery := bleve.NewMatchQuery(query)
	textQuery.SetField("text")
	textQuery.SetFuzziness(fuzziness)
	var q blevequery.Query = textQuery
	if titleBoost > 1 {
		titleQuery := bleve.NewMatchQuery(query)
		titleQuery.SetField("title")
		titleQuery.SetFuzziness(fuzziness)
		titleQuery.SetBoost(titleBoost)
		q = bleve.NewDisjunctionQuery(textQuery, titleQuery)
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"document_id", "title", "position", "text"}
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Result, len(res.Hits))
	for i, hit := range res.Hits {
		r := &Result{ID: hit.ID, Score: hit.Score}
		r.DocumentID, _ = hit.Fields["document_id"].(string)
		r.Title, _ = hit.Fields["title"].(string)
		r.Text, _ = hit.Fields["text"].(string)
		if pos, ok := hit.Fields["position"].(float64); ok {
			r.Position = int(pos)
		}
		out[i] = r
	}
	return out, nil
}

// DocCount returns the number of indexed chunks.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close releases the index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

func chunkID(documentID string, position int) string {
	return fmt.Sprintf("%s#%d", documentID, position)
}

// Terms returns every indexed chunk-text term with its document frequency.
func (b *BleveIndex) Terms() (map[string]int, error) {
	dict, err := b.index.FieldDict("text")
	if err != nil {
		return nil, fmt.Errorf("field dict: %w", err)
	}
	defer dict.Close()
	terms := make(map[string]int)
	for {
		entry, err := dict.Next()
		if err != nil {
			return nil, fmt.Errorf("field dict: %w", err)
		}
		if entry == nil {
			break
		}
		terms[entry.Term] = int(entry.Count)
	}
	return terms, nil
}
