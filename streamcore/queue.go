package streamcore

import (
	"context"
	"sync"

	"github.com/h2core/stream2/headerval"
)

// headerQueue and chunkQueue back the consumer API: a single producer
// (the frame dispatcher) appends, a single consumer (application code
// calling GetHeaders/GetNextChunk) pops, blocking until an item
// arrives, the queue closes, or the caller's context is done.

// List is re-exported so callers of streamcore don't need to import
// headerval directly just to name the queued type.
type List = headerval.List

type headerQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []List
	closed bool
}

func newHeaderQueue() *headerQueue {
	q := &headerQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *headerQueue) Push(l List) {
	q.mu.Lock()
	q.items = append(q.items, l)
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *headerQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Pop blocks until an item is available, the queue is closed, or ctx
// is done. A single watcher goroutine per call translates ctx
// cancellation into a cond broadcast; it exits as soon as Pop returns.
func (q *headerQueue) Pop(ctx context.Context) (List, bool) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			q.cond.Broadcast()
		case <-stop:
		}
	}()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed && ctx.Err() == nil {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

type chunkQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*Chunk
	closed bool
}

func newChunkQueue() *chunkQueue {
	q := &chunkQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *chunkQueue) Push(c *Chunk) {
	q.mu.Lock()
	q.items = append(q.items, c)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Unget re-prepends a chunk, used when the consumer only partially
// consumes the payload it was handed (§4.8 Unget).
func (q *chunkQueue) Unget(c *Chunk) {
	q.mu.Lock()
	q.items = append([]*Chunk{c}, q.items...)
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *chunkQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *chunkQueue) Pop(ctx context.Context) (*Chunk, bool) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			q.cond.Broadcast()
		case <-stop:
		}
	}()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed && ctx.Err() == nil {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}
