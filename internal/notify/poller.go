package notify

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Poller is a Notifier that checks each attached descriptor for pending
// input at a fixed interval instead of relying on SIGIO delivery. It is
// used where asynchronous I/O signals are unavailable or unwanted (tests,
// pseudo-terminals on exotic kernels). The handler contract is identical
// to the SIGIO dispatcher's: invocations come from a dispatch goroutine
// and may be spurious.
type Poller struct {
	interval time.Duration

	mu      sync.Mutex
	watches map[int]chan struct{}
}

var _ Notifier = (*Poller)(nil)

// NewPoller returns a Poller checking descriptors every interval.
func NewPoller(interval time.Duration) *Poller {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Poller{
		interval: interval,
		watches:  make(map[int]chan struct{}),
	}
}

// Attach starts a watch goroutine for fd.
func (p *Poller) Attach(fd int, h Handler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.watches[fd]; ok {
		return fmt.Errorf("handler already attached for fd %d", fd)
	}
	stop := make(chan struct{})
	p.watches[fd] = stop
	go p.watch(fd, h, stop)
	return nil
}

// Detach stops the watch goroutine for fd.
func (p *Poller) Detach(fd int) error {
	p.mu.Lock()
	stop, ok := p.watches[fd]
	if ok {
		delete(p.watches, fd)
	}
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("no handler attached for fd %d", fd)
	}
	close(stop)
	return nil
}

func (p *Poller) watch(fd int, h Handler, stop chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n, err := unix.IoctlGetInt(fd, unix.TIOCINQ)
			if err != nil || n == 0 {
				continue
			}
			h.HandleDataReady()
		}
	}
}
