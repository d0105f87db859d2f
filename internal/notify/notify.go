// Package notify delivers data-ready notifications for file descriptors.
//
// A Notifier is injected into every serial port handle rather than being
// reached through process-global state, so alternative implementations
// (or a fake in tests) can stand in for the default SIGIO dispatcher.
package notify

// Handler is notified when data may be available on the descriptor it was
// attached for. HandleDataReady is invoked from the notifier's dispatch
// goroutine and must not block for long; in particular it must never wait
// indefinitely on a lock a reader may hold.
type Handler interface {
	HandleDataReady()
}

// Notifier registers handlers for data-ready events on file descriptors.
type Notifier interface {
	// Attach registers h for data-ready events on fd. A descriptor can
	// carry at most one handler.
	Attach(fd int, h Handler) error
	// Detach removes the handler registered for fd.
	Detach(fd int) error
}
