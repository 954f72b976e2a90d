package genetics

import (
	"runtime"
	"sync"
	"time"
)

// parallelThreshold is the minimum number of cache misses to dispatch to
// the worker pool. Below this, inline computation is faster than the
// goroutine handoff.
const parallelThreshold = 32

// batchChunk is a range of pending requests for one worker.
type batchChunk struct {
	start, end int
}

// batchPool holds persistent workers for batched expression evaluation.
type batchPool struct {
	numWorkers int

	workChan chan batchChunk // sends work to workers
	doneChan chan struct{}   // workers signal completion
	stopChan chan struct{}   // signals workers to exit
	wg       sync.WaitGroup  // tracks active workers
	running  bool

	// Per-batch shared state, set before dispatch, read-only to workers
	// except for disjoint result slots.
	engine  *Engine
	pending []*Request
	results []Result
}

func newBatchPool(workers int) *batchPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &batchPool{numWorkers: workers}
}

// start launches the persistent worker goroutines.
func (p *batchPool) start() {
	if p.running {
		return
	}
	p.workChan = make(chan batchChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *batchPool) stop() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker processes chunks until stopped.
func (p *batchPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			for i := chunk.start; i < chunk.end; i++ {
				p.results[i] = p.engine.computeGuarded(p.pending[i])
			}
			p.doneChan <- struct{}{}
		}
	}
}

// dispatch fans the pending requests out to the pool and waits.
func (p *batchPool) dispatch(n int) {
	if !p.running {
		p.start()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		p.workChan <- batchChunk{start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}

// EvaluateBatch computes expressions for a whole slice of plants at
// sim-time now. Results are equivalent to calling Evaluate sequentially
// with the same environment snapshot: same formulas, same cache window —
// the freshness check happens once for the batch, misses are computed
// (in parallel above a size threshold), and the shared window is
// refreshed once if anything was recomputed.
func (e *Engine) EvaluateBatch(reqs []Request, now float64) []Result {
	results := make([]Result, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	start := time.Now()

	// Phase A: resolve cache hits under a single freshness check.
	fresh := e.cache.fresh(now)
	var pendingIdx []int
	for i := range reqs {
		key := cacheKey{handle: reqs[i].Handle, envSig: reqs[i].Conditions.Signature()}
		if fresh {
			if res, ok := e.cache.entries[key]; ok {
				e.cacheHits.Add(1)
				res.FromCache = true
				results[i] = res
				continue
			}
		}
		pendingIdx = append(pendingIdx, i)
	}

	// Phase B: compute the misses, parallel above the threshold.
	if len(pendingIdx) > 0 {
		if len(pendingIdx) < parallelThreshold {
			for _, i := range pendingIdx {
				results[i] = e.compute(&reqs[i])
			}
		} else {
			pending := make([]*Request, len(pendingIdx))
			slots := make([]Result, len(pendingIdx))
			for j, i := range pendingIdx {
				pending[j] = &reqs[i]
			}
			e.pool.engine = e
			e.pool.pending = pending
			e.pool.results = slots
			e.pool.dispatch(len(pending))
			for j, i := range pendingIdx {
				results[i] = slots[j]
			}
		}

		// Phase C: store misses and refresh the shared window once.
		for _, i := range pendingIdx {
			key := cacheKey{handle: reqs[i].Handle, envSig: reqs[i].Conditions.Signature()}
			e.cache.entries[key] = results[i]
		}
		e.cache.refresh(now)
		e.calcCount.Add(uint64(len(pendingIdx)))
	}

	e.batchNs.Add(time.Since(start).Nanoseconds())
	e.batchCount.Add(1)
	return results
}
