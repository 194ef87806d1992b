package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/kafka"
)

// Publisher ships batches of events off-process. *kafka.Producer satisfies it.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector buffers search events, feeds them to the in-process Aggregator and,
// when a Publisher is configured, forwards them in batches.
type Collector struct {
	aggregator    *Aggregator
	publisher     Publisher
	eventCh       chan SearchEvent
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewCollector(aggregator *Aggregator, publisher Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		aggregator:    aggregator,
		publisher:     publisher,
		eventCh:       make(chan SearchEvent, bufferSize),
		batchSize:     100,
		flushInterval: 2 * time.Second,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start launches the consume loop. Close must only be called after Start.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()

		batch := make([]kafka.Event, 0, c.batchSize)
		flush := func(ctx context.Context) {
			if len(batch) == 0 || c.publisher == nil {
				batch = batch[:0]
				return
			}
			if err := c.publisher.PublishBatch(ctx, batch); err != nil {
				c.logger.Error("failed to publish analytics batch", "count", len(batch), "error", err)
			}
			batch = make([]kafka.Event, 0, c.batchSize)
		}
		accept := func(event SearchEvent) {
			c.aggregator.Record(event)
			if c.publisher != nil {
				batch = append(batch, kafka.Event{Key: event.Strategy, Value: event})
			}
			if len(batch) >= c.batchSize {
				flush(ctx)
			}
		}

		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					flush(context.Background())
					return
				}
				accept(event)
			case <-ticker.C:
				flush(ctx)
			case <-ctx.Done():
				c.drainRemaining(accept)
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				flush(flushCtx)
				cancel()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"kafka", c.publisher != nil,
	)
}

// Track enqueues an event without blocking. Events are dropped when the
// buffer is full or the collector is closed.
func (c *Collector) Track(event SearchEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for buffered ones to be processed.
func (c *Collector) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.eventCh)
	}
	c.mu.Unlock()
	<-c.done
}

func (c *Collector) drainRemaining(accept func(SearchEvent)) {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			accept(event)
		default:
			return
		}
	}
}
