package serial

import (
	"bufio"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

func openTestStream(t *testing.T, opts ...Option) (*Stream, *os.File) {
	t.Helper()

	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	s, err := OpenStream(slave.Name(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, master
}

func TestStreamReadWrite(t *testing.T) {
	s, master := openTestStream(t)

	_, err := master.Write([]byte("stream"))
	require.NoError(t, err)

	buf := make([]byte, 6)
	n, err := s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "stream", string(buf[:n]))

	n, err = s.Write([]byte("back"))
	require.NoError(t, err)
	require.Equal(t, 4, n)

	received := make(chan string, 1)
	go func() {
		rbuf := make([]byte, 16)
		rn, err := master.Read(rbuf)
		if err != nil {
			received <- ""
			return
		}
		received <- string(rbuf[:rn])
	}()
	select {
	case msg := <-received:
		require.Equal(t, "back", msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for master to receive data")
	}
}

func TestStreamPutback(t *testing.T) {
	s, master := openTestStream(t)

	_, err := master.Write([]byte("xy"))
	require.NoError(t, err)

	b, err := s.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('x'), b)

	// Push it back and read it again.
	require.NoError(t, s.UnreadByte(b))
	require.ErrorIs(t, s.UnreadByte('z'), ErrPutbackOccupied)

	b, err = s.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('x'), b)

	b, err = s.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('y'), b)
}

func TestStreamPeek(t *testing.T) {
	s, master := openTestStream(t)

	_, err := master.Write([]byte("pq"))
	require.NoError(t, err)

	// Peek does not consume; repeated peeks return the same byte.
	b, err := s.Peek()
	require.NoError(t, err)
	require.Equal(t, byte('p'), b)

	b, err = s.Peek()
	require.NoError(t, err)
	require.Equal(t, byte('p'), b)

	b, err = s.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('p'), b)

	b, err = s.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('q'), b)
}

func TestStreamBuffered(t *testing.T) {
	s, master := openTestStream(t)

	require.Equal(t, 0, s.Buffered())

	_, err := master.Write([]byte("k"))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return s.Buffered() > 0 }, time.Second, time.Millisecond)

	// The probed byte was captured as putback, not lost.
	b, err := s.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('k'), b)
	require.Equal(t, 0, s.Buffered())
}

func TestStreamPutbackFirstInRead(t *testing.T) {
	s, master := openTestStream(t)

	_, err := master.Write([]byte("abc"))
	require.NoError(t, err)

	b, err := s.ReadByte()
	require.NoError(t, err)
	require.NoError(t, s.UnreadByte(b))

	buf := make([]byte, 3)
	n, err := s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "abc", string(buf[:n]))
}

func TestStreamWithBufio(t *testing.T) {
	s, master := openTestStream(t)

	_, err := master.Write([]byte("line one\nline two\n"))
	require.NoError(t, err)

	r := bufio.NewReader(s)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "line one\n", line)

	line, err = r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "line two\n", line)
}

func TestStreamClosedOperations(t *testing.T) {
	s, _ := openTestStream(t)
	require.NoError(t, s.Close())

	_, err := s.Read(make([]byte, 1))
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = s.Write([]byte("x"))
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = s.ReadByte()
	require.ErrorIs(t, err, ErrNotOpen)
	require.ErrorIs(t, s.UnreadByte('x'), ErrNotOpen)
	require.Equal(t, -1, s.Buffered())
	require.ErrorIs(t, s.Close(), ErrNotOpen)
}

func TestStreamEightBitsPassThrough(t *testing.T) {
	s, master := openTestStream(t, WithCharSize(CharSize8))

	_, err := master.Write([]byte{0xFF})
	require.NoError(t, err)

	b, err := s.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xFF), b)
}

func TestStreamInputStripAtSevenBits(t *testing.T) {
	s, master := openTestStream(t, WithCharSize(CharSize7))

	// With 7 data bits the high-order bit of inbound bytes is stripped.
	_, err := master.Write([]byte{0xFF})
	require.NoError(t, err)

	b, err := s.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x7F), b)
}
