package rag

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/retailops/asset-helpdesk/internal/catalog"
	"github.com/retailops/asset-helpdesk/internal/chunker"
	"github.com/retailops/asset-helpdesk/internal/document"
	"github.com/retailops/asset-helpdesk/internal/extractor"
	"github.com/retailops/asset-helpdesk/internal/runlog"
	"github.com/retailops/asset-helpdesk/internal/vectorstore"
	apperrors "github.com/retailops/asset-helpdesk/pkg/errors"
	"github.com/retailops/asset-helpdesk/pkg/metrics"
)

// Service orchestrates ingestion and retrieval. The answer cache, audit
// collector, and run log are optional; a nil value disables the concern
// without changing request semantics.
type Service struct {
	scanner     *document.Scanner
	extractor   *extractor.Extractor
	chunker     *chunker.Chunker
	embedder    Embedder
	synthesizer Synthesizer
	index       VectorIndex
	ledger      *Ledger

	cache  *AnswerCache
	audit  *AuditCollector
	runs   *runlog.Store
	m      *metrics.Metrics
	logger *slog.Logger

	topK       int
	maxResults int

	// ingestMu serializes ingestion within this process. Concurrent runs
	// would race on the ledger and double-index files.
	ingestMu sync.Mutex
}

// Options carries the optional collaborators for NewService.
type Options struct {
	Cache      *AnswerCache
	Audit      *AuditCollector
	Runs       *runlog.Store
	TopK       int
	MaxResults int
}

// NewService wires the pipeline together.
func NewService(
	scanner *document.Scanner,
	ext *extractor.Extractor,
	ch *chunker.Chunker,
	embedder Embedder,
	synthesizer Synthesizer,
	index VectorIndex,
	ledger *Ledger,
	m *metrics.Metrics,
	opts Options,
) *Service {
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}
	return &Service{
		scanner:     scanner,
		extractor:   ext,
		chunker:     ch,
		embedder:    embedder,
		synthesizer: synthesizer,
		index:       index,
		ledger:      ledger,
		cache:       opts.Cache,
		audit:       opts.Audit,
		runs:        opts.Runs,
		m:           m,
		logger:      slog.Default().With("component", "rag-service"),
		topK:        topK,
		maxResults:  maxResults,
	}
}

// Ingest runs one full ingestion pass over the document folder: discover,
// fingerprint, skip already-indexed files, then extract, chunk, embed, and
// upsert the rest. Only one run executes at a time per instance.
func (s *Service) Ingest(ctx context.Context) (*IngestResponse, error) {
	if !s.ingestMu.TryLock() {
		return nil, apperrors.New(apperrors.ErrIngestionInFlight, http.StatusConflict,
			"an ingestion run is already in progress")
	}
	defer s.ingestMu.Unlock()

	started := time.Now()
	docs, err := s.scanner.Scan()
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInternal, http.StatusInternalServerError,
			"scanning documents: %v", err)
	}

	resp := &IngestResponse{
		NewFiles:     []string{},
		SkippedFiles: []string{},
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		digest, err := document.Fingerprint(doc.Path)
		if err != nil {
			s.logger.Error("fingerprinting failed, skipping file", "file", doc.Filename, "error", err)
			resp.SkippedFiles = append(resp.SkippedFiles, doc.Filename)
			s.m.DocumentsSkipped.WithLabelValues("unreadable").Inc()
			continue
		}
		key := document.Key(doc.Filename, digest)

		if s.ledger.Contains(key) {
			resp.SkippedFiles = append(resp.SkippedFiles, doc.Filename)
			s.m.DocumentsSkipped.WithLabelValues("already_ingested").Inc()
			continue
		}

		chunks, err := s.ingestOne(ctx, doc, key)
		if err != nil {
			return nil, err
		}
		if chunks == 0 {
			resp.SkippedFiles = append(resp.SkippedFiles, doc.Filename)
			s.m.DocumentsSkipped.WithLabelValues("no_text").Inc()
			continue
		}

		s.ledger.Add(key)
		resp.NewFiles = append(resp.NewFiles, doc.Filename)
		resp.FilesProcessed++
		resp.ChunksIngested += chunks
		s.m.DocumentsIngested.Inc()
		s.m.ChunksIngested.Add(float64(chunks))
	}

	duration := time.Since(started)
	s.m.IngestRunDuration.Observe(duration.Seconds())
	resp.Message = "Ingestion complete"
	s.logger.Info("ingestion run finished",
		"files_processed", resp.FilesProcessed,
		"chunks_ingested", resp.ChunksIngested,
		"skipped", len(resp.SkippedFiles),
		"duration", duration)

	if resp.ChunksIngested > 0 && s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.runs != nil {
		err := s.runs.Record(ctx, runlog.Run{
			StartedAt:      started,
			DurationMs:     duration.Milliseconds(),
			FilesProcessed: resp.FilesProcessed,
			ChunksIngested: resp.ChunksIngested,
			NewFiles:       resp.NewFiles,
			SkippedFiles:   resp.SkippedFiles,
		})
		if err != nil {
			s.logger.Warn("failed to record ingestion run", "error", err)
		}
	}
	if s.audit != nil {
		s.audit.Track(IngestRunEvent{
			Type:           EventIngestRun,
			FilesProcessed: resp.FilesProcessed,
			ChunksIngested: resp.ChunksIngested,
			SkippedFiles:   len(resp.SkippedFiles),
			DurationMs:     duration.Milliseconds(),
			Timestamp:      time.Now().UTC(),
		})
	}
	return resp, nil
}

// ingestOne extracts, chunks, embeds, and indexes one document, returning the
// number of chunks written. Zero chunks with a nil error means the file had
// no usable text.
func (s *Service) ingestOne(ctx context.Context, doc document.Document, key string) (int, error) {
	text := s.extractor.Extract(doc.Path)
	if strings.TrimSpace(text) == "" {
		s.logger.Warn("no text extracted", "file", doc.Filename)
		return 0, nil
	}

	meta := chunker.Metadata{
		Filename:      doc.Filename,
		Fingerprint:   key,
		AssetCategory: catalog.DetectCategory(doc.Filename),
		DocType:       catalog.DetectDocType(doc.Filename),
	}
	chunks := s.chunker.Chunk(text, meta)
	if len(chunks) == 0 {
		s.logger.Warn("no chunks produced", "file", doc.Filename)
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	embedStart := time.Now()
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	s.m.EmbeddingLatency.Observe(time.Since(embedStart).Seconds())
	if err != nil {
		return 0, apperrors.Newf(apperrors.ErrEmbeddingFailed, http.StatusBadGateway,
			"embedding %s: %v", doc.Filename, err)
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, ch := range chunks {
		points[i] = vectorstore.Point{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Payload: vectorstore.Payload{
				Text:          ch.Text,
				Filename:      ch.Metadata.Filename,
				FileHash:      ch.Metadata.Fingerprint,
				ChunkID:       ch.Index,
				StartChar:     ch.StartChar,
				EndChar:       ch.EndChar,
				AssetCategory: ch.Metadata.AssetCategory,
				DocType:       ch.Metadata.DocType,
			},
		}
	}

	if err := s.index.Upsert(ctx, points); err != nil {
		return 0, apperrors.Newf(apperrors.ErrVectorStoreFailed, http.StatusBadGateway,
			"indexing %s: %v", doc.Filename, err)
	}
	s.logger.Info("document ingested", "file", doc.Filename, "chunks", len(chunks))
	return len(chunks), nil
}

// Status reports the ingestion state of every discovered file without
// modifying anything.
func (s *Service) Status(ctx context.Context) (*IngestStatus, error) {
	docs, err := s.scanner.Scan()
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInternal, http.StatusInternalServerError,
			"scanning documents: %v", err)
	}

	status := &IngestStatus{Files: []FileStatus{}}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fs := FileStatus{Filename: doc.Filename}
		if category := catalog.DetectCategory(doc.Filename); category != "" {
			fs.AssetCategory = &category
		}
		digest, err := document.Fingerprint(doc.Path)
		if err != nil {
			s.logger.Warn("fingerprinting failed", "file", doc.Filename, "error", err)
		} else {
			fs.Ingested = s.ledger.Contains(document.Key(doc.Filename, digest))
		}
		status.Files = append(status.Files, fs)
		status.TotalFiles++
		if fs.Ingested {
			status.IngestedFiles++
		} else {
			status.PendingFiles++
		}
	}
	return status, nil
}

// Query answers a question from the indexed documentation. No hits produces a
// fixed fallback answer; a synthesis failure degrades to an excerpt of the
// top passage. Both still return 200.
func (s *Service) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"question must not be empty")
	}

	started := time.Now()
	if s.cache == nil {
		resp, err := s.answer(ctx, question, req)
		s.trackQuery(req, resp, false, started)
		return resp, err
	}

	key := s.cache.Key(question, req.AssetCategory, req.Filename)
	if cached, ok := s.cache.Get(ctx, key); ok {
		s.m.SearchLatency.WithLabelValues("hit").Observe(time.Since(started).Seconds())
		s.trackQuery(req, &cached, true, started)
		return &cached, nil
	}

	resp, err := s.cache.Do(key, func() (QueryResponse, error) {
		r, err := s.answer(ctx, question, req)
		if err != nil {
			return QueryResponse{}, err
		}
		s.cache.Set(ctx, key, *r)
		return *r, nil
	})
	if err != nil {
		return nil, err
	}
	s.m.SearchLatency.WithLabelValues("miss").Observe(time.Since(started).Seconds())
	s.trackQuery(req, &resp, false, started)
	return &resp, nil
}

// answer runs the uncached query path: embed, search, synthesize.
func (s *Service) answer(ctx context.Context, question string, req QueryRequest) (*QueryResponse, error) {
	vector, err := s.embedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Search(ctx, vector, s.topK, vectorstore.Filter{
		Filename:      req.Filename,
		AssetCategory: req.AssetCategory,
	})
	if err != nil {
		s.m.QueriesTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Newf(apperrors.ErrVectorStoreFailed, http.StatusBadGateway,
			"searching index: %v", err)
	}

	if len(hits) == 0 {
		s.m.QueriesTotal.WithLabelValues("no_context").Inc()
		return &QueryResponse{Answer: noContextAnswer, Sources: []Source{}}, nil
	}

	contextParts := make([]string, len(hits))
	for i, hit := range hits {
		contextParts[i] = fmt.Sprintf("[Source: %s]\n%s", hit.Payload.Filename, hit.Payload.Text)
	}
	sources := collectSources(hits)

	answer, err := s.synthesizer.Complete(ctx, answerSystemPrompt, buildAnswerPrompt(contextParts, question))
	if err != nil {
		s.logger.Error("answer synthesis failed, degrading", "error", err)
		s.m.QueriesTotal.WithLabelValues("degraded").Inc()
		return &QueryResponse{Answer: degradedAnswer(hits[0].Payload.Text), Sources: sources}, nil
	}

	s.m.QueriesTotal.WithLabelValues("answered").Inc()
	return &QueryResponse{Answer: answer, Sources: sources}, nil
}

// Search runs a raw similarity search without synthesis.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"query must not be empty")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.topK
	}
	if limit > s.maxResults {
		limit = s.maxResults
	}

	vector, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	hits, err := s.index.Search(ctx, vector, limit, vectorstore.Filter{
		Filename:      req.Filename,
		AssetCategory: req.AssetCategory,
	})
	s.m.SearchLatency.WithLabelValues("uncached").Observe(time.Since(started).Seconds())
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrVectorStoreFailed, http.StatusBadGateway,
			"searching index: %v", err)
	}

	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{
			Text:          hit.Payload.Text,
			Filename:      hit.Payload.Filename,
			AssetCategory: hit.Payload.AssetCategory,
			Score:         hit.Score,
		}
	}
	if s.audit != nil {
		s.audit.Track(QueryEvent{
			Type:          EventSearch,
			Question:      query,
			AssetCategory: req.AssetCategory,
			Filename:      req.Filename,
			Hits:          len(results),
			LatencyMs:     time.Since(started).Milliseconds(),
			Timestamp:     time.Now().UTC(),
		})
	}
	return results, nil
}

// Stats reports collection-level statistics: total chunks and distinct source
// files.
func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	total, err := s.index.Count(ctx)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrVectorStoreFailed, http.StatusBadGateway,
			"counting points: %v", err)
	}

	files := make(map[string]struct{})
	err = s.index.ScrollPayloads(ctx, []string{"filename"}, func(p vectorstore.Payload) error {
		if p.Filename != "" {
			files[p.Filename] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrVectorStoreFailed, http.StatusBadGateway,
			"scanning payloads: %v", err)
	}

	return &StatsResponse{
		TotalChunks:    total,
		TotalFiles:     len(files),
		CollectionName: s.index.Collection(),
	}, nil
}

// Reset drops and recreates the collection, clearing the ledger and the
// answer cache with it.
func (s *Service) Reset(ctx context.Context) (string, error) {
	if err := s.index.DeleteCollection(ctx); err != nil {
		return "", apperrors.Newf(apperrors.ErrVectorStoreFailed, http.StatusBadGateway,
			"deleting collection: %v", err)
	}
	if err := s.index.EnsureCollection(ctx, s.embedder.Dimension()); err != nil {
		return "", apperrors.Newf(apperrors.ErrVectorStoreFailed, http.StatusBadGateway,
			"recreating collection: %v", err)
	}
	s.ledger.Clear()
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.audit != nil {
		s.audit.Track(IngestRunEvent{Type: EventReset, Timestamp: time.Now().UTC()})
	}
	s.logger.Info("collection reset", "collection", s.index.Collection())
	return "Collection deleted and recreated", nil
}

// Summarize condenses a conversation. A synthesis failure degrades to the
// verbatim tail of the conversation rather than an error.
func (s *Service) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	if len(req.Messages) == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"messages must not be empty")
	}

	summary, err := s.synthesizer.CompleteWithLimit(ctx, summarizeSystemPrompt,
		transcript(req.Messages), summarizeMaxTokens)
	if err != nil {
		s.logger.Error("summarization failed, degrading", "error", err)
		return &SummarizeResponse{Summary: fallbackSummary(req.Messages)}, nil
	}
	return &SummarizeResponse{Summary: summary}, nil
}

// Runs returns recent ingestion runs from the run log.
func (s *Service) Runs(ctx context.Context, limit int) ([]runlog.Run, error) {
	if s.runs == nil {
		return nil, apperrors.New(apperrors.ErrRAGUnavailable, http.StatusServiceUnavailable,
			"run history requires postgres")
	}
	return s.runs.Recent(ctx, limit)
}

func (s *Service) embedQuery(ctx context.Context, text string) ([]float32, error) {
	started := time.Now()
	vector, err := s.embedder.Embed(ctx, text)
	s.m.EmbeddingLatency.Observe(time.Since(started).Seconds())
	if err != nil {
		s.m.QueriesTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Newf(apperrors.ErrEmbeddingFailed, http.StatusBadGateway,
			"embedding query: %v", err)
	}
	return vector, nil
}

func (s *Service) trackQuery(req QueryRequest, resp *QueryResponse, cacheHit bool, started time.Time) {
	if s.audit == nil || resp == nil {
		return
	}
	s.audit.Track(QueryEvent{
		Type:          queryEventType(resp),
		Question:      req.Question,
		AssetCategory: req.AssetCategory,
		Filename:      req.Filename,
		Hits:          len(resp.Sources),
		CacheHit:      cacheHit,
		LatencyMs:     time.Since(started).Milliseconds(),
		Timestamp:     time.Now().UTC(),
	})
}

func queryEventType(resp *QueryResponse) EventType {
	switch {
	case resp.Answer == noContextAnswer:
		return EventNoContext
	case strings.HasPrefix(resp.Answer, degradedAnswerPrefix):
		return EventDegraded
	default:
		return EventQuery
	}
}

// collectSources deduplicates hit filenames preserving rank order.
func collectSources(hits []vectorstore.SearchHit) []Source {
	seen := make(map[string]struct{}, len(hits))
	sources := make([]Source, 0, len(hits))
	for _, hit := range hits {
		if _, ok := seen[hit.Payload.Filename]; ok {
			continue
		}
		seen[hit.Payload.Filename] = struct{}{}
		sources = append(sources, Source{
			Filename:      hit.Payload.Filename,
			DocType:       hit.Payload.DocType,
			AssetCategory: hit.Payload.AssetCategory,
		})
	}
	return sources
}
