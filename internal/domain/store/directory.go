// Package store keeps the searchable directory of stores seen in the sales
// exports and resolves loosely written store names to their trade area.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/classification"
)

// Entry is a store to index
type Entry struct {
	Code string
	Name string
	Info classification.StoreInfo
	Area string
}

// Document is the indexed form of a store
type Document struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	TypeLabel string `json:"type_label"`
	Brand     string `json:"brand"`
	Region    string `json:"region"`
	Area      string `json:"area"`
}

// Hit is a search result with its relevance score
type Hit struct {
	Store Document `json:"store"`
	Score float64  `json:"score"`
}

// Directory is a full-text index of stores backed by bleve
type Directory struct {
	index bleve.Index
	mu    sync.RWMutex
	path  string // empty for in-memory
}

// NewDirectory creates or opens a store index. An empty path keeps the
// index in memory.
func NewDirectory(path string) (*Directory, error) {
	var (
		index bleve.Index
		err   error
	)

	m := buildIndexMapping()

	if path == "" {
		index, err = bleve.NewMemOnly(m)
	} else if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o755); mkdirErr != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", mkdirErr)
		}
		index, err = bleve.New(path, m)
	} else {
		index, err = bleve.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create/open store index: %w", err)
	}

	return &Directory{index: index, path: path}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = simple.Name

	kw := bleve.NewTextFieldMapping()
	kw.Analyzer = keyword.Name

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("code", kw)
	doc.AddFieldMappingsAt("name", text)
	doc.AddFieldMappingsAt("type", kw)
	doc.AddFieldMappingsAt("type_label", kw)
	doc.AddFieldMappingsAt("brand", kw)
	doc.AddFieldMappingsAt("region", kw)
	doc.AddFieldMappingsAt("area", text)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	im.DefaultAnalyzer = simple.Name
	return im
}

func documentID(e Entry) string {
	if e.Code != "" {
		return e.Code
	}
	return e.Name
}

// Replace swaps the indexed stores for entries in a single batch
func (d *Directory) Replace(entries []Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing, err := d.allIDs()
	if err != nil {
		return err
	}

	batch := d.index.NewBatch()
	for _, id := range existing {
		batch.Delete(id)
	}

	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		doc := Document{
			ID:        documentID(e),
			Code:      e.Code,
			Name:      e.Name,
			Type:      string(e.Info.Type),
			TypeLabel: classification.TypeLabel(e.Info.Type),
			Brand:     e.Info.BrandName(),
			Region:    e.Info.Region,
			Area:      e.Area,
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("failed to index store %s: %w", e.Name, err)
		}
	}

	if err := d.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch index: %w", err)
	}
	return nil
}

func (d *Directory) allIDs() ([]string, error) {
	count, err := d.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(count)

	res, err := d.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Search finds stores whose name contains q, or whose name is within one
// edit of it, or whose region, brand or type label equals q.
func (d *Directory) Search(q string, limit int) ([]Hit, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	q = strings.TrimSpace(q)
	if q == "" {
		return []Hit{}, nil
	}

	// wildcard metacharacters in user input are taken literally
	term := strings.ToLower(strings.NewReplacer("*", "", "?", "", `\`, "").Replace(q))

	name := bleve.NewMatchQuery(q)
	name.SetField("name")
	name.SetFuzziness(1)

	contains := bleve.NewWildcardQuery("*" + term + "*")
	contains.SetField("name")

	queries := []query.Query{name, contains}
	for _, field := range []string{"region", "brand", "type_label", "code"} {
		tq := bleve.NewTermQuery(q)
		tq.SetField(field)
		queries = append(queries, tq)
	}

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))
	req.Size = limit
	req.Fields = []string{"*"}

	res, err := d.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("store search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		doc := Document{ID: h.ID}
		doc.Code, _ = h.Fields["code"].(string)
		doc.Name, _ = h.Fields["name"].(string)
		doc.Type, _ = h.Fields["type"].(string)
		doc.TypeLabel, _ = h.Fields["type_label"].(string)
		doc.Brand, _ = h.Fields["brand"].(string)
		doc.Region, _ = h.Fields["region"].(string)
		doc.Area, _ = h.Fields["area"].(string)
		hits = append(hits, Hit{Store: doc, Score: h.Score})
	}
	return hits, nil
}

// Count returns the number of indexed stores
func (d *Directory) Count() (uint64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.index.DocCount()
}

// Close closes the index
func (d *Directory) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.index != nil {
		return d.index.Close()
	}
	return nil
}
