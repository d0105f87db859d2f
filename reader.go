package serial

import (
	"strings"
	"time"
)

// pollInterval is how long the deadline-bounded readers sleep between
// checks of the receive buffer.
const pollInterval = time.Millisecond

// ReadByte returns the next byte from the receive buffer, waiting up to
// timeout for one to arrive. A timeout of zero waits indefinitely. When
// the timeout expires with nothing buffered, ErrReadTimeout is returned.
func (p *Port) ReadByte(timeout time.Duration) (byte, error) {
	if !p.isOpen {
		return 0, ErrNotOpen
	}

	start := p.clk.Now()
	for {
		if c, ok := p.buf.pop(); ok {
			return c, nil
		}
		if timeout > 0 && p.clk.Since(start) > timeout {
			return 0, ErrReadTimeout
		}
		p.clk.Sleep(pollInterval)
	}
}

// Read returns exactly count bytes, waiting up to timeout for each byte.
// With count zero it instead drains whatever is currently buffered,
// returning once the buffer goes empty; the timeout is ignored in that
// mode and the result may be empty.
//
// On timeout the bytes collected before the deadline are returned together
// with ErrReadTimeout.
func (p *Port) Read(count int, timeout time.Duration) ([]byte, error) {
	if !p.isOpen {
		return nil, ErrNotOpen
	}
	if count < 0 {
		return nil, ErrInvalidArgument
	}

	if count == 0 {
		var data []byte
		for p.buf.dataAvailable() {
			c, ok := p.buf.pop()
			if !ok {
				break
			}
			data = append(data, c)
		}
		return data, nil
	}

	data := make([]byte, 0, count)
	for len(data) < count {
		c, err := p.ReadByte(timeout)
		if err != nil {
			return data, err
		}
		data = append(data, c)
	}
	return data, nil
}

// ReadLine reads bytes until the terminator byte is seen, returning the
// accumulated string including the terminator. The timeout is both an
// overall deadline on the line, re-checked against the entry time before
// every byte, and the bound on each individual byte wait. A timeout of
// zero waits indefinitely. On timeout the partial line is returned
// together with ErrReadTimeout.
func (p *Port) ReadLine(timeout time.Duration, terminator byte) (string, error) {
	if !p.isOpen {
		return "", ErrNotOpen
	}

	start := p.clk.Now()
	var sb strings.Builder
	for {
		if timeout > 0 && p.clk.Since(start) > timeout {
			return sb.String(), ErrReadTimeout
		}
		c, err := p.ReadByte(timeout)
		if err != nil {
			return sb.String(), err
		}
		sb.WriteByte(c)
		if c == terminator {
			return sb.String(), nil
		}
	}
}
