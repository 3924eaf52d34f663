package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/taskboard/assignment-system/internal/api/metrics"
	"github.com/taskboard/assignment-system/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes assignment events to a fixed set of workers using
// consistent hashing on the target username, guaranteeing per-user
// assignment ordering.
type Dispatcher struct {
	workers []chan ports.AssignmentEvent
	service ports.IngestService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.IngestService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.AssignmentEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AssignmentEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its target user.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(event ports.AssignmentEvent) {
	i := d.shardIndex(event.AssignedUser)
	d.workers[i] <- event
	metrics.AssignmentQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
}

// EnqueueBatch enqueues multiple events preserving per-user ordering.
func (d *Dispatcher) EnqueueBatch(events []ports.AssignmentEvent) {
	for _, e := range events {
		d.Enqueue(e)
	}
}

// shardIndex maps a username deterministically to a worker index.
func (d *Dispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AssignmentEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.service.Process(ctx, event); err != nil {
				metrics.AssignmentEventsTotal.WithLabelValues("error").Inc()
				d.log.Error().Err(err).
					Str("title", event.Title).
					Str("username", event.AssignedUser).
					Int("worker_id", id).
					Msg("assignment event processing failed")
				continue
			}
			metrics.AssignmentEventsTotal.WithLabelValues("processed").Inc()
		}
	}
}
