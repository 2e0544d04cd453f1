package world

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum item count to fan out. Below this,
// single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// workChunk is a range of items for one worker.
type workChunk struct {
	lo, hi int
	fn     func(lo, hi int)
}

// pool is a persistent set of workers splitting per-agent and per-link
// loops into contiguous chunks. Chunks write disjoint state only.
type pool struct {
	numWorkers int
	threshold  int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

func newPool(workers int) *pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &pool{numWorkers: workers, threshold: parallelThreshold}
}

// start launches the worker goroutines.
func (p *pool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *pool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.lo, chunk.hi)
			p.doneChan <- struct{}{}
		}
	}
}

// run calls fn over [0, n). Small inputs and single-worker pools stay on the
// calling goroutine. It has the shape of connection.Runner.
func (p *pool) run(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if p.numWorkers <= 1 || n < p.threshold {
		fn(0, n)
		return
	}
	if !p.running {
		p.start()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for lo := 0; lo < n; lo += chunkSize {
		hi := min(lo+chunkSize, n)
		p.workChan <- workChunk{lo: lo, hi: hi, fn: fn}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
