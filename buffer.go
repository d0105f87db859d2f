package serial

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// recvBuffer collects inbound bytes delivered by data-ready notifications.
// The primary queue is shared between the notification context (producer)
// and the reader (consumer) under mu. The shadow queue takes bytes when mu
// is contended at notification time, so the notification path never blocks
// on a lock a reader may hold; it is touched only from the dispatch
// goroutine and therefore needs no lock of its own. The avail flag mirrors
// queue non-emptiness for lock-light polling.
type recvBuffer struct {
	mu     sync.Mutex
	queue  []byte
	shadow []byte
	avail  atomic.Bool
}

// collect drains the bytes currently pending at fd. Invariant: the shadow
// queue is always drained into the primary queue before newly collected
// bytes are appended, preserving overall arrival order.
func (b *recvBuffer) collect(fd int) {
	pending, err := unix.IoctlGetInt(fd, unix.TIOCINQ)
	if err != nil {
		return
	}

	var one [1]byte
	if b.mu.TryLock() {
		b.queue = append(b.queue, b.shadow...)
		b.shadow = b.shadow[:0]
		for i := 0; i < pending; i++ {
			n, err := unix.Read(fd, one[:])
			if err != nil || n <= 0 {
				break
			}
			b.queue = append(b.queue, one[0])
		}
		b.avail.Store(len(b.queue) > 0)
		b.mu.Unlock()
		return
	}

	// A reader holds the lock; stage into the shadow queue instead of
	// blocking the notification path. Reconciled on the next collect that
	// wins the lock.
	for i := 0; i < pending; i++ {
		n, err := unix.Read(fd, one[:])
		if err != nil || n <= 0 {
			break
		}
		b.shadow = append(b.shadow, one[0])
	}
}

// size returns the primary queue length.
func (b *recvBuffer) size() int {
	b.mu.Lock()
	n := len(b.queue)
	b.mu.Unlock()
	return n
}

// pop removes and returns the front byte, updating the availability flag.
func (b *recvBuffer) pop() (byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return 0, false
	}
	c := b.queue[0]
	b.queue = b.queue[1:]
	if len(b.queue) == 0 {
		b.queue = nil
		b.avail.Store(false)
	}
	return c, true
}

// dataAvailable reports whether unread bytes are queued.
func (b *recvBuffer) dataAvailable() bool {
	return b.avail.Load()
}

// reset discards all queued bytes.
func (b *recvBuffer) reset() {
	b.mu.Lock()
	b.queue = nil
	b.shadow = nil
	b.avail.Store(false)
	b.mu.Unlock()
}
