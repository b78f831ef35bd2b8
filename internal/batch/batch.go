// Package batch turns a stream of single-position inference requests into
// GPU-sized batches and dispatches each batch to one of several pre-warmed
// model instances running in parallel.
//
// Grounded on internal/engine/nneval.go's batchLoop (the
// request-queue-plus-timeout batch coalescing shape) and
// brensch-snek2/executor/inference's OnnxPool/OnnxClient split (N
// independent model instances, round-robin/idle-slot dispatch, an
// aggregate RuntimeStats).
package batch

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Output is a single position's inference result: a value estimate and a
// flat prior vector over the model's fixed action encoding.
type Output struct {
	Value  float64
	Priors []float64
}

// Model runs inference over a batch of flattened feature vectors, one
// input per position, returning one Output per input in the same order.
type Model interface {
	Run(inputs [][]float32) ([]Output, error)
	Close() error
}

// Config controls batch assembly.
type Config struct {
	// BatchSize is the maximum number of requests coalesced into one
	// dispatched batch.
	BatchSize int
	// BatchTimeout bounds how long the coordinator waits for a batch to
	// fill once its first request has arrived. Partial batches are
	// dispatched rather than waiting indefinitely for stragglers.
	BatchTimeout time.Duration
	// QueueCapacity bounds the number of requests buffered ahead of the
	// coordinator. Producers suspend once it is full.
	QueueCapacity int
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 64
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = time.Millisecond
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = 4096
	}
	return c
}

type request struct {
	input  []float32
	result chan Output
	errc   chan error
}

// RuntimeStats summarizes batching throughput since construction.
type RuntimeStats struct {
	TotalBatches  int64
	TotalItems    int64
	AvgBatchSize  float64
	QueueLen      int
	IdleInstances int
}

// BatchedModel is the batching layer sitting in front of the NN model: a
// bounded queue feeds a single coordinator goroutine, which coalesces
// requests into batches and dispatches each to whichever of its N model
// instances is currently idle.
type BatchedModel struct {
	instances []Model
	idle      chan int
	requests  chan request
	cfg       Config

	totalBatches int64
	totalItems   int64

	done chan struct{}
}

// New constructs a BatchedModel over instances (already-initialized,
// pre-warmed model handles) and starts its coordinator goroutine.
func New(instances []Model, cfg Config) (*BatchedModel, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("batch: at least one model instance is required")
	}
	cfg = cfg.withDefaults()

	idle := make(chan int, len(instances))
	for i := range instances {
		idle <- i
	}

	m := &BatchedModel{
		instances: instances,
		idle:      idle,
		requests:  make(chan request, cfg.QueueCapacity),
		cfg:       cfg,
		done:      make(chan struct{}),
	}
	go m.coordinate()
	return m, nil
}

// Close stops accepting new work is not supported mid-flight; callers are
// expected to stop issuing Inference calls before closing. Close destroys
// every model instance.
func (m *BatchedModel) Close() error {
	close(m.done)
	var firstErr error
	for _, inst := range m.instances {
		if err := inst.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Inference enqueues input and suspends until its batch has run, the
// caller's context is cancelled, or the queue is full and ctx is
// cancelled first. Cancellation only ever abandons the caller's own
// waiter slot; any batch input has already joined continues to
// completion and its result is simply discarded.
func (m *BatchedModel) Inference(ctx context.Context, input []float32) (Output, error) {
	req := request{input: input, result: make(chan Output, 1), errc: make(chan error, 1)}

	select {
	case m.requests <- req:
	case <-ctx.Done():
		return Output{}, ctx.Err()
	case <-m.done:
		return Output{}, fmt.Errorf("batch: model closed")
	}

	select {
	case out := <-req.result:
		return out, nil
	case err := <-req.errc:
		return Output{}, err
	case <-ctx.Done():
		return Output{}, ctx.Err()
	}
}

// Stats reports a point-in-time snapshot of batching throughput.
func (m *BatchedModel) Stats() RuntimeStats {
	batches := atomic.LoadInt64(&m.totalBatches)
	items := atomic.LoadInt64(&m.totalItems)
	avg := 0.0
	if batches > 0 {
		avg = float64(items) / float64(batches)
	}
	return RuntimeStats{
		TotalBatches:  batches,
		TotalItems:    items,
		AvgBatchSize:  avg,
		QueueLen:      len(m.requests),
		IdleInstances: len(m.idle),
	}
}

// coordinate draws requests off the queue, assembling a batch until it is
// full or the timeout since the first request elapses, then dispatches it
// to an idle instance. Partial batches are dispatched rather than waiting
// for stragglers.
func (m *BatchedModel) coordinate() {
	for {
		first, ok := <-m.requests
		if !ok {
			return
		}
		batch := make([]request, 0, m.cfg.BatchSize)
		batch = append(batch, first)

		timeout := time.After(m.cfg.BatchTimeout)
	collect:
		for len(batch) < m.cfg.BatchSize {
			select {
			case r := <-m.requests:
				batch = append(batch, r)
			case <-timeout:
				break collect
			case <-m.done:
				break collect
			}
		}

		select {
		case idx := <-m.idle:
			go m.runBatch(idx, batch)
		case <-m.done:
			return
		}
	}
}

// runBatch executes one batch on instance idx and routes each result back
// to its waiter, preserving the batch's input order.
func (m *BatchedModel) runBatch(idx int, batch []request) {
	defer func() { m.idle <- idx }()

	inputs := make([][]float32, len(batch))
	for i, r := range batch {
		inputs[i] = r.input
	}

	outputs, err := m.instances[idx].Run(inputs)
	if err != nil {
		for _, r := range batch {
			r.errc <- err
		}
		return
	}

	atomic.AddInt64(&m.totalBatches, 1)
	atomic.AddInt64(&m.totalItems, int64(len(batch)))

	for i, r := range batch {
		r.result <- outputs[i]
	}
}
