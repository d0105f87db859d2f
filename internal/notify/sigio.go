package notify

import (
	"fmt"
	"os"
	"os/signal"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

// SIGIO dispatches data-ready events driven by the SIGIO signal. Attach
// directs the descriptor's asynchronous I/O signals at the current process
// (F_SETOWN) and enables them (O_ASYNC); a single goroutine listens for
// SIGIO and fans each delivery out to every attached handler. SIGIO does
// not identify which descriptor became ready, so handlers qualify the
// event themselves (typically with TIOCINQ) and treat a spurious wakeup
// as a no-op.
type SIGIO struct {
	mu       sync.Mutex
	handlers map[int]Handler
	sig      chan os.Signal
	done     chan struct{}
}

var _ Notifier = (*SIGIO)(nil)

var (
	sharedOnce sync.Once
	shared     *SIGIO
)

// Shared returns the process-wide SIGIO dispatcher.
func Shared() *SIGIO {
	sharedOnce.Do(func() {
		shared = NewSIGIO()
	})
	return shared
}

// NewSIGIO returns a SIGIO dispatcher with no handlers attached. The
// signal listener starts with the first Attach and stops with the last
// Detach.
func NewSIGIO() *SIGIO {
	return &SIGIO{handlers: make(map[int]Handler)}
}

// Attach registers h for SIGIO-driven data-ready events on fd.
func (s *SIGIO) Attach(fd int, h Handler) error {
	if err := enableAsync(fd); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.handlers[fd]; ok {
		return fmt.Errorf("handler already attached for fd %d", fd)
	}
	s.handlers[fd] = h
	if len(s.handlers) == 1 {
		s.sig = make(chan os.Signal, 1)
		s.done = make(chan struct{})
		signal.Notify(s.sig, unix.SIGIO)
		go s.dispatch(s.sig, s.done)
	}
	return nil
}

// Detach removes the handler for fd and disables asynchronous
// notification on the descriptor.
func (s *SIGIO) Detach(fd int) error {
	s.mu.Lock()
	if _, ok := s.handlers[fd]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("no handler attached for fd %d", fd)
	}
	delete(s.handlers, fd)
	var stop func()
	if len(s.handlers) == 0 {
		sig, done := s.sig, s.done
		s.sig, s.done = nil, nil
		stop = func() {
			signal.Stop(sig)
			close(done)
		}
	}
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	return disableAsync(fd)
}

func (s *SIGIO) dispatch(sig chan os.Signal, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-sig:
			s.mu.Lock()
			handlers := make([]Handler, 0, len(s.handlers))
			for _, h := range s.handlers {
				handlers = append(handlers, h)
			}
			s.mu.Unlock()
			for _, h := range handlers {
				h.HandleDataReady()
			}
		}
	}
}

// enableAsync directs ownership of the descriptor's I/O signals at the
// current process and turns on asynchronous notification.
func enableAsync(fd int) error {
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETOWN, unix.Getpid()); err != nil {
		return fmt.Errorf("set descriptor owner: %w", err)
	}
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return fmt.Errorf("get descriptor flags: %w", err)
	}
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags|unix.O_ASYNC); err != nil {
		return fmt.Errorf("enable asynchronous notification: %w", err)
	}
	return nil
}

func disableAsync(fd int) error {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return fmt.Errorf("get descriptor flags: %w", err)
	}
	var errs error
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags&^unix.O_ASYNC); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("disable asynchronous notification: %w", err))
	}
	return errs
}
