// Package fabric is the in-process, channel-based transport that realizes
// the Halo Exchanger's non-blocking contract (spec.md §4.4): posting a send
// or receive returns immediately with a handle, and the caller waits on a
// batch of handles later (mirroring MPI_Isend/Irecv/Waitall). One rank is a
// goroutine; a Fabric is the shared switchboard they exchange halo data and
// timing measurements through.
package fabric

import (
	"sync"

	"github.com/ajroetker/blurconv/internal/config"
	"github.com/ajroetker/blurconv/internal/halo"
)

type key struct {
	rank int
	tag  halo.Tag
}

// Fabric routes tagged messages between rank ids [0, P). Exactly one
// in-flight message per (rank, tag) pair is expected per iteration (the
// protocol's own discipline guarantees this), so each slot is a channel of
// capacity 1.
type Fabric struct {
	mu      sync.Mutex
	inboxes map[key]chan []byte
	timing  chan float64
	closed  chan struct{}
	once    sync.Once

	// Barrier is the collective rendezvous before iteration 0 (spec.md §4.7).
	Barrier *Barrier
}

// New builds a Fabric sized for p ranks.
func New(p int) *Fabric {
	f := &Fabric{
		inboxes: make(map[key]chan []byte),
		timing:  make(chan float64, p),
		closed:  make(chan struct{}),
	}
	f.Barrier = NewBarrier(p, f.closed)
	return f
}

// Barrier implements the startup rendezvous of spec.md §4.7: "a barrier
// precedes iteration 0". Every rank calls Wait once, after its initial tile
// read; none proceeds past it until all p ranks have, so the per-rank
// elapsed-time measurement that follows begins at the same wall-clock moment
// across the cluster regardless of how long each rank's own read took.
//
// A rank that fails before reaching the barrier (e.g. a KindIO error on a
// truncated input file) never calls Wait, so closed is what unblocks every
// sibling already waiting — without it, those siblings would hang forever
// even though the job has already aborted (spec.md §5 "fail-fast", §7
// "CommError ... fatal job abort").
type Barrier struct {
	mu     sync.Mutex
	n      int
	count  int
	ch     chan struct{}
	closed <-chan struct{}
}

// NewBarrier builds a one-shot barrier for n participants that aborts early
// if closed is closed before all n arrive.
func NewBarrier(n int, closed <-chan struct{}) *Barrier {
	return &Barrier{n: n, ch: make(chan struct{}), closed: closed}
}

// Wait blocks until all n participants have called Wait, then releases all
// of them together. If the fabric is closed first — because some other
// rank raised a fatal error before reaching the barrier — Wait returns a
// CommError instead of blocking forever.
func (b *Barrier) Wait() error {
	b.mu.Lock()
	b.count++
	last := b.count == b.n
	b.mu.Unlock()
	if last {
		close(b.ch)
		return nil
	}
	select {
	case <-b.ch:
		return nil
	case <-b.closed:
		return config.Errorf(config.KindComm, "fabric: barrier aborted, only %d/%d ranks arrived", b.count, b.n)
	}
}

func (f *Fabric) inbox(k key) chan []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.inboxes[k]
	if !ok {
		ch = make(chan []byte, 1)
		f.inboxes[k] = ch
	}
	return ch
}

// Close aborts any in-flight post/wait with a CommError (spec.md §7); used
// when a rank must abandon the job early (e.g. after a sibling rank's tile
// read fails).
func (f *Fabric) Close() {
	f.once.Do(func() { close(f.closed) })
}

// Handle is a pending non-blocking send or receive.
type Handle struct {
	done chan error
}

// Wait blocks until the operation this handle represents completes, and
// returns its error, if any (a CommError per spec.md §7).
func (h *Handle) Wait() error {
	return <-h.done
}

// WaitAll waits on every handle, collecting the first error encountered (a
// fatal CommError, spec.md §4.5 step 3/5: "Wait on all outstanding ...
// handles collectively"). It still waits for every handle even after an
// error, matching MPI_Waitall's "wait for all, then report status".
func WaitAll(handles []*Handle) error {
	var first error
	for _, h := range handles {
		if h == nil {
			continue
		}
		if err := h.Wait(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PostSend packs the region of buf described by d (starting at byte offset
// start, with row stride rowStride) into a contiguous scratch buffer
// immediately — satisfying spec.md §4.4's "buffer ownership must remain
// stable until the send completes" by copying up front rather than
// deferring to the goroutine — then hands it to the toRank/tag inbox.
func (f *Fabric) PostSend(toRank int, tag halo.Tag, buf []byte, start, rowStride int, d halo.Descriptor) *Handle {
	packed := halo.Pack(buf, start, rowStride, d)
	h := &Handle{done: make(chan error, 1)}
	ch := f.inbox(key{rank: toRank, tag: tag})
	go func() {
		select {
		case ch <- packed:
			h.done <- nil
		case <-f.closed:
			h.done <- config.Errorf(config.KindComm, "fabric: send to rank %d tag %v aborted", toRank, tag)
		}
	}()
	return h
}

// PostRecv posts a non-blocking receive for (selfRank, tag); on completion
// the received bytes are scattered directly into buf's region described by
// d, exactly as MPI_Irecv fills the destination buffer in place.
func (f *Fabric) PostRecv(selfRank int, tag halo.Tag, buf []byte, start, rowStride int, d halo.Descriptor) *Handle {
	h := &Handle{done: make(chan error, 1)}
	ch := f.inbox(key{rank: selfRank, tag: tag})
	go func() {
		select {
		case data := <-ch:
			halo.Unpack(buf, start, rowStride, d, data)
			h.done <- nil
		case <-f.closed:
			h.done <- config.Errorf(config.KindComm, "fabric: recv at rank %d tag %v aborted", selfRank, tag)
		}
	}()
	return h
}

// SendTiming reports a rank's elapsed wall-clock time for the reduction in
// spec.md §4.7.
func (f *Fabric) SendTiming(elapsed float64) {
	f.timing <- elapsed
}

// CollectMaxTiming drains n timing reports and returns the maximum —
// the critical-path wall time (spec.md §4.7, "rank 0 ... reports the
// maximum").
func (f *Fabric) CollectMaxTiming(n int) (float64, error) {
	var max float64
	for i := 0; i < n; i++ {
		select {
		case v := <-f.timing:
			if v > max {
				max = v
			}
		case <-f.closed:
			return 0, config.Errorf(config.KindComm, "fabric: timing collection aborted after %d/%d reports", i, n)
		}
	}
	return max, nil
}
