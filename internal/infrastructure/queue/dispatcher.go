package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/sessionguard/auth-api/internal/core/domain"
	"github.com/sessionguard/auth-api/internal/core/ports"
	"github.com/sessionguard/auth-api/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	storeTimeout   = 5 * time.Second
)

// Dispatcher persists session audit events on a fixed set of workers. Events
// are sharded by principal id, so one principal's events are stored in the
// order they were published.
type Dispatcher struct {
	workers []chan domain.SessionEvent
	repo    ports.SessionEventRepository
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.SessionEventRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.SessionEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SessionEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish enqueues event on its principal's worker. When that worker's buffer
// is full the event is dropped rather than blocking the caller.
func (d *Dispatcher) Publish(event domain.SessionEvent) {
	idx := d.shardIndex(event.PrincipalID)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("kind", string(event.Kind)).
			Str("principal_id", event.PrincipalID).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a principal id deterministically to a worker index.
func (d *Dispatcher) shardIndex(principalID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(principalID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SessionEvent) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.store(ctx, id, event)
		}
	}
}

func (d *Dispatcher) store(ctx context.Context, id int, event domain.SessionEvent) {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := d.repo.InsertSessionEvent(storeCtx, event); err != nil {
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("kind", string(event.Kind)).
			Str("principal_id", event.PrincipalID).
			Int("worker_id", id).
			Msg("session event store failed")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues("stored").Inc()
}
