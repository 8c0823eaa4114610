package sensors

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/imu_display/internal/imu"
)

// scriptedPort returns one scripted chunk per Read, split when the buffer is
// short; an empty chunk acts like an expired read timeout.
type scriptedPort struct {
	chunks []string
	err    error
	closed bool
}

func (p *scriptedPort) Read(b []byte) (int, error) {
	if len(p.chunks) == 0 {
		if p.err != nil {
			return 0, p.err
		}
		return 0, io.EOF
	}
	c := p.chunks[0]
	if c == "" {
		p.chunks = p.chunks[1:]
		return 0, io.EOF
	}
	n := copy(b, c)
	if n < len(c) {
		p.chunks[0] = c[n:]
	} else {
		p.chunks = p.chunks[1:]
	}
	return n, nil
}

func (p *scriptedPort) Write(b []byte) (int, error) { return len(b), nil }

func (p *scriptedPort) Close() error {
	p.closed = true
	return nil
}

func TestSerialOptions_OpenOptions(t *testing.T) {
	o := DefaultSerialOptions("/dev/ttyUSB0").OpenOptions()
	assert.Equal(t, "/dev/ttyUSB0", o.PortName)
	assert.Equal(t, uint(115200), o.BaudRate)
	assert.Equal(t, uint(2), o.StopBits)
	assert.Equal(t, uint(8), o.DataBits)
	assert.Equal(t, uint(0), o.MinimumReadSize)
	assert.Equal(t, uint(1000), o.InterCharacterTimeout)
	assert.Equal(t, serial.PARITY_NONE, o.ParityMode)
}

func TestSerialSource_CompleteLines(t *testing.T) {
	port := &scriptedPort{chunks: []string{"A\t1\t1\t2\t3\tZ\nA\t2\t1\t2\t3\tZ\n"}}
	src := NewSerialSource("test", port)

	line, err := src.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "A\t1\t1\t2\t3\tZ\n", line)

	line, err = src.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "A\t2\t1\t2\t3\tZ\n", line)
}

func TestSerialSource_TimeoutKeepsPartialLine(t *testing.T) {
	port := &scriptedPort{chunks: []string{"A\t1\t55", "", "0\t600\t512\tZ\n"}}
	src := NewSerialSource("test", port)

	_, err := src.ReadLine()
	assert.ErrorIs(t, err, imu.ErrTimeout)

	line, err := src.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "A\t1\t550\t600\t512\tZ\n", line)
}

func TestSerialSource_LineWithoutEndIsBounded(t *testing.T) {
	noise := strings.Repeat("x", 2*maxLineLength)
	port := &scriptedPort{chunks: []string{noise, "\nA\t1\t1\t2\t3\tZ\n"}}
	src := NewSerialSource("test", port)

	for i := 0; i < 2; i++ {
		line, err := src.ReadLine()
		require.NoError(t, err)
		assert.Len(t, line, maxLineLength)
		_, err = imu.ParseLine(line)
		assert.ErrorIs(t, err, imu.ErrWrongFieldCount)
	}

	line, err := src.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "\n", line)

	line, err = src.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "A\t1\t1\t2\t3\tZ\n", line)
}

func TestSerialSource_IdleTimeout(t *testing.T) {
	src := NewSerialSource("test", &scriptedPort{})
	for i := 0; i < 3; i++ {
		_, err := src.ReadLine()
		assert.ErrorIs(t, err, imu.ErrTimeout)
	}
}

func TestSerialSource_ReadError(t *testing.T) {
	boom := errors.New("device unplugged")
	src := NewSerialSource("test", &scriptedPort{err: boom})

	_, err := src.ReadLine()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, imu.ErrTimeout)
}

func TestOpenSerialSource(t *testing.T) {
	port := &scriptedPort{}
	var got serial.OpenOptions
	opts := DefaultSerialOptions("/dev/ttyS3")
	opts.ReadTimeout = 500 * time.Millisecond

	src, err := openSerialSource(opts, func(o serial.OpenOptions) (io.ReadWriteCloser, error) {
		got = o
		return port, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyS3", got.PortName)
	assert.Equal(t, uint(500), got.InterCharacterTimeout)

	require.NoError(t, src.Close())
	assert.True(t, port.closed)
}

func TestOpenSerialSource_Errors(t *testing.T) {
	_, err := openSerialSource(SerialOptions{}, nil)
	assert.Error(t, err)

	boom := errors.New("no such device")
	_, err = openSerialSource(DefaultSerialOptions("/dev/none"), func(serial.OpenOptions) (io.ReadWriteCloser, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}
