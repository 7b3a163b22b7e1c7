package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/cmsguard/pkg/logger"
)

// Sink accepts audit events without reporting failures to the caller.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// Discard is a Sink that drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Record(context.Context, Event) {}

// ContextExtractor reads a string value from a request context.
type ContextExtractor func(ctx context.Context) (string, bool)

// Logger is the asynchronous Sink backed by a Storage.
type Logger struct {
	storage Storage
	log     *slog.Logger
	hasher  *KeyedHasher
	now     func() time.Time

	requestIDExtractor ContextExtractor
	ipExtractor        ContextExtractor
	userAgentExtractor ContextExtractor
	actorExtractor     func(ctx context.Context) (id, role string, ok bool)

	bufferSize     int
	batchSize      int
	batchTimeout   time.Duration
	storageTimeout time.Duration

	queue chan Event
	done  chan struct{}
	// mu orders sends on queue before close of done.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup
	dropped   atomic.Int64
	written   atomic.Int64
}

// Option configures a Logger.
type Option func(*Logger)

func WithLogger(l *slog.Logger) Option {
	return func(a *Logger) {
		if l != nil {
			a.log = l
		}
	}
}

// WithIPHasher pseudonymizes client IPs before they are stored.
func WithIPHasher(h *KeyedHasher) Option {
	return func(a *Logger) { a.hasher = h }
}

func WithRequestIDExtractor(fn ContextExtractor) Option {
	return func(a *Logger) { a.requestIDExtractor = fn }
}

func WithIPExtractor(fn ContextExtractor) Option {
	return func(a *Logger) { a.ipExtractor = fn }
}

func WithUserAgentExtractor(fn ContextExtractor) Option {
	return func(a *Logger) { a.userAgentExtractor = fn }
}

func WithActorExtractor(fn func(ctx context.Context) (id, role string, ok bool)) Option {
	return func(a *Logger) { a.actorExtractor = fn }
}

// WithBuffer sets the queue capacity and batch shape. Zero values keep the
// defaults.
func WithBuffer(bufferSize, batchSize int, batchTimeout time.Duration) Option {
	return func(a *Logger) {
		if bufferSize > 0 {
			a.bufferSize = bufferSize
		}
		if batchSize > 0 {
			a.batchSize = batchSize
		}
		if batchTimeout > 0 {
			a.batchTimeout = batchTimeout
		}
	}
}

// WithStorageTimeout bounds each batch write.
func WithStorageTimeout(d time.Duration) Option {
	return func(a *Logger) {
		if d > 0 {
			a.storageTimeout = d
		}
	}
}

// NewLogger starts the background writer. Close must be called on shutdown
// to flush queued events.
func NewLogger(storage Storage, opts ...Option) *Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}

	a := &Logger{
		storage:        storage,
		log:            logger.Discard(),
		now:            time.Now,
		bufferSize:     1000,
		batchSize:      100,
		batchTimeout:   100 * time.Millisecond,
		storageTimeout: 5 * time.Second,
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With(logger.Component("audit"))
	a.queue = make(chan Event, a.bufferSize)

	a.wg.Add(1)
	go a.worker()

	return a
}

// Record enriches e and queues it. It never blocks: a full queue or a closed
// logger drops the event.
func (a *Logger) Record(ctx context.Context, e Event) {
	a.enrich(ctx, &e)

	if err := e.Validate(); err != nil {
		a.log.WarnContext(ctx, "invalid audit event dropped", logger.Error(err), logger.Event(e.Action))
		return
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.dropped.Add(1)
		a.log.WarnContext(ctx, "audit logger closed, event dropped", logger.Event(e.Action))
		return
	}

	select {
	case a.queue <- e:
	default:
		a.dropped.Add(1)
		a.log.WarnContext(ctx, "audit queue full, event dropped", logger.Event(e.Action))
	}
}

// Dropped returns the number of events that were not queued.
func (a *Logger) Dropped() int64 {
	return a.dropped.Load()
}

// Written returns the number of events successfully handed to storage.
func (a *Logger) Written() int64 {
	return a.written.Load()
}

// Close stops accepting events and flushes the queue. The context bounds the
// wait.
func (a *Logger) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.done)
		a.mu.Unlock()
	})

	finished := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Logger) enrich(ctx context.Context, e *Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = a.now().UTC()
	}
	if e.Result == "" {
		e.Result = ResultSuccess
	}
	if e.RequestID == "" && a.requestIDExtractor != nil {
		if v, ok := a.requestIDExtractor(ctx); ok {
			e.RequestID = v
		}
	}
	if e.IP == "" && a.ipExtractor != nil {
		if v, ok := a.ipExtractor(ctx); ok {
			e.IP = v
		}
	}
	if e.UserAgent == "" && a.userAgentExtractor != nil {
		if v, ok := a.userAgentExtractor(ctx); ok {
			e.UserAgent = v
		}
	}
	if e.ActorID == "" && a.actorExtractor != nil {
		if id, role, ok := a.actorExtractor(ctx); ok {
			e.ActorID, e.ActorRole = id, role
		}
	}
	if e.IP != "" && a.hasher != nil {
		e.IP = a.hasher.Hash(e.IP)
	}
}

func (a *Logger) worker() {
	defer a.wg.Done()

	batch := make([]Event, 0, a.batchSize)
	ticker := time.NewTicker(a.batchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Request contexts are gone by now; storage gets its own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), a.storageTimeout)
		defer cancel()

		if err := a.storage.Store(ctx, batch); err != nil {
			a.log.ErrorContext(ctx, "failed to store audit events",
				logger.Error(err), logger.Count(len(batch)))
		} else {
			a.written.Add(int64(len(batch)))
		}
		clear(batch)
		batch = batch[:0]
	}

	for {
		select {
		case e := <-a.queue:
			batch = append(batch, e)
			if len(batch) >= a.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-a.done:
			for {
				select {
				case e := <-a.queue:
					batch = append(batch, e)
					if len(batch) >= a.batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}
