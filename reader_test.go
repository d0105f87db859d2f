package serial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReadByteTimeout(t *testing.T) {
	port, _ := openTestPort(t)

	timeout := 50 * time.Millisecond
	start := time.Now()
	_, err := port.ReadByte(timeout)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrReadTimeout)
	require.GreaterOrEqual(t, elapsed, timeout)
}

func TestReadByteDeliversData(t *testing.T) {
	port, master := openTestPort(t)

	_, err := master.Write([]byte{0x42})
	require.NoError(t, err)

	b, err := port.ReadByte(time.Second)
	require.NoError(t, err)
	require.Equal(t, byte(0x42), b)
}

func TestReadExactCount(t *testing.T) {
	port, master := openTestPort(t)

	_, err := master.Write([]byte("hello world"))
	require.NoError(t, err)

	data, err := port.Read(5, time.Second)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)

	// The rest stays buffered for the next read.
	data, err = port.Read(6, time.Second)
	require.NoError(t, err)
	require.Equal(t, []byte(" world"), data)
}

func TestReadTimeoutReturnsPartialData(t *testing.T) {
	port, master := openTestPort(t)

	_, err := master.Write([]byte("abc"))
	require.NoError(t, err)
	require.Eventually(t, port.IsDataAvailable, time.Second, time.Millisecond)

	data, err := port.Read(10, 50*time.Millisecond)
	require.ErrorIs(t, err, ErrReadTimeout)
	require.Equal(t, []byte("abc"), data)
}

func TestReadZeroCountDrainsBuffer(t *testing.T) {
	port, master := openTestPort(t)

	// Empty buffer: returns immediately with nothing.
	data, err := port.Read(0, 0)
	require.NoError(t, err)
	require.Empty(t, data)

	_, err = master.Write([]byte("drain me"))
	require.NoError(t, err)
	require.Eventually(t, port.IsDataAvailable, time.Second, time.Millisecond)

	data, err = port.Read(0, 0)
	require.NoError(t, err)
	require.Equal(t, []byte("drain me"), data)
	require.False(t, port.IsDataAvailable())
}

func TestReadNegativeCount(t *testing.T) {
	port, _ := openTestPort(t)

	_, err := port.Read(-1, time.Second)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestReadLine(t *testing.T) {
	port, master := openTestPort(t)

	_, err := master.Write([]byte("hello\nworld\n"))
	require.NoError(t, err)

	line, err := port.ReadLine(time.Second, '\n')
	require.NoError(t, err)
	require.Equal(t, "hello\n", line)

	line, err = port.ReadLine(time.Second, '\n')
	require.NoError(t, err)
	require.Equal(t, "world\n", line)
}

func TestReadLineTimeoutReturnsPartialLine(t *testing.T) {
	port, master := openTestPort(t)

	_, err := master.Write([]byte("no terminator"))
	require.NoError(t, err)
	require.Eventually(t, port.IsDataAvailable, time.Second, time.Millisecond)

	line, err := port.ReadLine(50*time.Millisecond, '\n')
	require.ErrorIs(t, err, ErrReadTimeout)
	require.Equal(t, "no terminator", line)
}

func TestReadLineOverallDeadline(t *testing.T) {
	port, master := openTestPort(t)

	// Trickle bytes in faster than the per-byte wait so only the overall
	// deadline can end the call.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-time.After(20 * time.Millisecond):
				master.Write([]byte("x"))
			}
		}
	}()

	timeout := 100 * time.Millisecond
	start := time.Now()
	line, err := port.ReadLine(timeout, '\n')
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrReadTimeout)
	require.NotContains(t, line, "\n")
	require.GreaterOrEqual(t, elapsed, timeout)
	require.Less(t, elapsed, time.Second)
}

func TestReadLineCustomTerminator(t *testing.T) {
	port, master := openTestPort(t)

	_, err := master.Write([]byte("a;b;"))
	require.NoError(t, err)

	line, err := port.ReadLine(time.Second, ';')
	require.NoError(t, err)
	require.Equal(t, "a;", line)
}
