// Package rag ties the ingestion-and-retrieval pipeline together: it runs
// ingestion over the document folder, answers questions by searching the
// vector index, and assembles grounded answers with cited sources.
package rag

import (
	"context"

	"github.com/retailops/asset-helpdesk/internal/vectorstore"
)

// Embedder maps text to fixed-dimension dense vectors. Implementations must
// surface failures as hard errors; there is no acceptable degraded vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Synthesizer produces a natural-language completion from a system
// instruction and a user prompt.
type Synthesizer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	CompleteWithLimit(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// VectorIndex is the persistence surface the orchestrator needs from the
// vector store.
type VectorIndex interface {
	EnsureCollection(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, points []vectorstore.Point) error
	Search(ctx context.Context, vector []float32, limit int, filter vectorstore.Filter) ([]vectorstore.SearchHit, error)
	ScrollPayloads(ctx context.Context, fields []string, fn func(vectorstore.Payload) error) error
	Count(ctx context.Context) (int, error)
	DeleteCollection(ctx context.Context) error
	Collection() string
}

// IngestResponse summarises one ingestion run.
type IngestResponse struct {
	Message        string   `json:"message"`
	FilesProcessed int      `json:"files_processed"`
	ChunksIngested int      `json:"chunks_ingested"`
	NewFiles       []string `json:"new_files"`
	SkippedFiles   []string `json:"skipped_files"`
}

// FileStatus reports one discovered file's ingestion state.
type FileStatus struct {
	Filename      string  `json:"filename"`
	Ingested      bool    `json:"ingested"`
	AssetCategory *string `json:"asset_category"`
}

// IngestStatus reports the ingestion state of the whole document folder.
type IngestStatus struct {
	TotalFiles    int          `json:"total_files"`
	IngestedFiles int          `json:"ingested_files"`
	PendingFiles  int          `json:"pending_files"`
	Files         []FileStatus `json:"files"`
}

// QueryRequest is a question with optional payload filters.
type QueryRequest struct {
	Question      string `json:"question"`
	AssetCategory string `json:"asset_category,omitempty"`
	Filename      string `json:"filename,omitempty"`
}

// Source cites one document that contributed to an answer.
type Source struct {
	Filename      string `json:"filename"`
	DocType       string `json:"doc_type"`
	AssetCategory string `json:"asset_category"`
}

// QueryResponse is a synthesized answer with its cited sources.
type QueryResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// SearchRequest is a raw similarity search with optional payload filters.
type SearchRequest struct {
	Query         string `json:"query"`
	Limit         int    `json:"limit"`
	AssetCategory string `json:"asset_category,omitempty"`
	Filename      string `json:"filename,omitempty"`
}

// SearchResult is one matching chunk with its similarity score.
type SearchResult struct {
	Text          string  `json:"text"`
	Filename      string  `json:"filename"`
	AssetCategory string  `json:"asset_category"`
	Score         float64 `json:"score"`
}

// StatsResponse reports collection-level statistics.
type StatsResponse struct {
	TotalChunks    int    `json:"total_chunks"`
	TotalFiles     int    `json:"total_files"`
	CollectionName string `json:"collection_name"`
}

// ChatMessage is one turn of a helpdesk conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SummarizeRequest asks for a summary of a conversation.
type SummarizeRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// SummarizeResponse carries the conversation summary.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}
