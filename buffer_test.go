package serial

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// testPipe returns the read end of a pipe preloaded via the returned write
// function. TIOCINQ works on pipes, which is all collect needs.
func testPipe(t *testing.T) (int, func([]byte)) {
	t.Helper()

	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	t.Cleanup(func() { unix.Close(fds[0]); unix.Close(fds[1]) })

	return fds[0], func(p []byte) {
		n, err := unix.Write(fds[1], p)
		require.NoError(t, err)
		require.Equal(t, len(p), n)
	}
}

func TestRecvBufferCollect(t *testing.T) {
	rfd, write := testPipe(t)

	var b recvBuffer
	require.False(t, b.dataAvailable())
	require.Equal(t, 0, b.size())

	write([]byte("abc"))
	b.collect(rfd)

	require.True(t, b.dataAvailable())
	require.Equal(t, 3, b.size())

	for _, want := range []byte("abc") {
		c, ok := b.pop()
		require.True(t, ok)
		require.Equal(t, want, c)
	}

	// Emptied by the last pop.
	require.False(t, b.dataAvailable())
	_, ok := b.pop()
	require.False(t, ok)
}

func TestRecvBufferCollectNothingPending(t *testing.T) {
	rfd, _ := testPipe(t)

	var b recvBuffer
	b.collect(rfd)
	require.False(t, b.dataAvailable())
	require.Equal(t, 0, b.size())
}

func TestRecvBufferShadowQueueOrder(t *testing.T) {
	rfd, write := testPipe(t)

	var b recvBuffer
	write([]byte("12"))
	b.collect(rfd)

	// Contend the primary lock: the next collect must stage into the
	// shadow queue without blocking.
	b.mu.Lock()
	write([]byte("34"))
	b.collect(rfd)
	require.Len(t, b.shadow, 2)
	b.mu.Unlock()

	// Popping sees only the primary queue until the shadow is reconciled.
	c, ok := b.pop()
	require.True(t, ok)
	require.Equal(t, byte('1'), c)

	// The next uncontended collect drains the shadow queue before
	// appending new bytes, preserving arrival order.
	write([]byte("56"))
	b.collect(rfd)
	require.Empty(t, b.shadow)

	var got []byte
	for {
		c, ok := b.pop()
		if !ok {
			break
		}
		got = append(got, c)
	}
	require.Equal(t, []byte("23456"), got)
}

func TestRecvBufferReset(t *testing.T) {
	rfd, write := testPipe(t)

	var b recvBuffer
	write([]byte("xyz"))
	b.collect(rfd)
	require.True(t, b.dataAvailable())

	b.reset()
	require.False(t, b.dataAvailable())
	require.Equal(t, 0, b.size())
	_, ok := b.pop()
	require.False(t, ok)
}
