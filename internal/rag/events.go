package rag

import (
	"context"
	"log/slog"
	"time"

	"github.com/retailops/asset-helpdesk/pkg/kafka"
)

// EventType classifies audit events on the Kafka topic.
type EventType string

const (
	EventQuery      EventType = "query"
	EventSearch     EventType = "search"
	EventIngestRun  EventType = "ingest_run"
	EventReset      EventType = "collection_reset"
	EventNoContext  EventType = "query_no_context"
	EventDegraded   EventType = "query_degraded"
)

// QueryEvent is published for every query or search request.
type QueryEvent struct {
	Type          EventType `json:"type"`
	Question      string    `json:"question"`
	AssetCategory string    `json:"asset_category,omitempty"`
	Filename      string    `json:"filename,omitempty"`
	Hits          int       `json:"hits"`
	CacheHit      bool      `json:"cache_hit"`
	LatencyMs     int64     `json:"latency_ms"`
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id,omitempty"`
}

// IngestRunEvent is published after every ingestion run or reset.
type IngestRunEvent struct {
	Type           EventType `json:"type"`
	FilesProcessed int       `json:"files_processed"`
	ChunksIngested int       `json:"chunks_ingested"`
	SkippedFiles   int       `json:"skipped_files"`
	DurationMs     int64     `json:"duration_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

// AuditCollector forwards events to Kafka from a buffered channel so request
// handling never blocks on the broker. Events are dropped, with a warning,
// when the buffer is full.
type AuditCollector struct {
	producer *kafka.Producer
	eventCh  chan any
	done     chan struct{}
	logger   *slog.Logger
}

// NewAuditCollector creates a collector with the given buffer size.
func NewAuditCollector(producer *kafka.Producer, bufferSize int) *AuditCollector {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &AuditCollector{
		producer: producer,
		eventCh:  make(chan any, bufferSize),
		done:     make(chan struct{}),
		logger:   slog.Default().With("component", "audit-collector"),
	}
}

// Start launches the forwarding loop until ctx is cancelled or Close is
// called.
func (c *AuditCollector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				if err := c.producer.Publish(ctx, kafka.Event{Key: "audit", Value: event}); err != nil {
					c.logger.Error("failed to publish audit event", "error", err)
				}
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("audit collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event without blocking.
func (c *AuditCollector) Track(event any) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("audit event dropped (buffer full)")
	}
}

// Close stops the collector after flushing enqueued events.
func (c *AuditCollector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *AuditCollector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			if err := c.producer.Publish(context.Background(), kafka.Event{Key: "audit", Value: event}); err != nil {
				c.logger.Error("failed to publish remaining audit event", "error", err)
			}
		default:
			return
		}
	}
}
