package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/callwise/scraper/internal/logger"
)

// DefaultIndex is the index chunk documents are written to.
const DefaultIndex = "pages"

// Config holds Elasticsearch connection settings for the chunk index.
type Config struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

// ChunkDocument is one indexed content chunk.
type ChunkDocument struct {
	CallID         string `json:"call_id"`
	OriginalPageID string `json:"original_page_id"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	ChunkIndex     int    `json:"chunk_index"`
	TotalChunks    int    `json:"total_chunks"`
}

// Indexer writes page content chunks to Elasticsearch.
type Indexer struct {
	client *es.Client
	index  string
	log    logger.Interface
}

// NewIndexer creates an Elasticsearch-backed chunk indexer and verifies the
// connection.
func NewIndexer(cfg Config, log logger.Interface) (*Indexer, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New("elasticsearch addresses are required")
	}
	if cfg.Index == "" {
		cfg.Index = DefaultIndex
	}

	client, err := es.NewClient(es.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	res, err := client.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error pinging elasticsearch: %s", res.String())
	}

	return &Indexer{client: client, index: cfg.Index, log: log}, nil
}

// IndexPage chunks content into fixed-size character windows and indexes
// each chunk tagged with the call, page, chunk index, and total chunk count.
// Document ids are deterministic so re-indexing a page overwrites its chunks.
func (ix *Indexer) IndexPage(ctx context.Context, callID, pageID, title, content string) error {
	chunks := Chunk(content, DefaultChunkSize)

	for i, chunk := range chunks {
		doc := ChunkDocument{
			CallID:         callID,
			OriginalPageID: pageID,
			Title:          title,
			Content:        chunk,
			ChunkIndex:     i,
			TotalChunks:    len(chunks),
		}

		if err := ix.indexDocument(ctx, fmt.Sprintf("%s-chunk-%d", pageID, i), doc); err != nil {
			return err
		}
	}

	ix.log.Debug("indexed page chunks", "page_id", pageID, "chunks", len(chunks))
	return nil
}

// indexDocument indexes a single chunk document.
func (ix *Indexer) indexDocument(ctx context.Context, id string, doc ChunkDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk document: %w", err)
	}

	res, err := ix.client.Index(
		ix.index,
		bytes.NewReader(body),
		ix.client.Index.WithContext(ctx),
		ix.client.Index.WithDocumentID(id),
	)
	if err != nil {
		return fmt.Errorf("failed to index chunk document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}

	return nil
}
