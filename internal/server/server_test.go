package server

import (
	"net"
	"testing"

	"github.com/panjf2000/gnet/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kvresp/rediscore/internal/command"
)

type mockConn struct {
	gnet.Conn
	written []byte
	buf     []byte
	closed  bool
}

func (m *mockConn) Write(buf []byte) (int, error) {
	m.written = append(m.written, buf...)
	return len(buf), nil
}

func (m *mockConn) Next(n int) ([]byte, error) {
	if len(m.buf) == 0 {
		return nil, nil
	}
	if n == -1 || n > len(m.buf) {
		buf := m.buf
		m.buf = nil
		return buf, nil
	}
	buf := m.buf[:n]
	m.buf = m.buf[n:]
	return buf, nil
}

func (m *mockConn) Close() error {
	m.closed = true
	return nil
}

func (m *mockConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5555}
}

func newTestServer() *Server {
	return New(command.New(16), zap.NewNop())
}

func TestOnOpenRegistersConnection(t *testing.T) {
	s := newTestServer()
	c := &mockConn{}

	out, action := s.OnOpen(c)
	assert.Nil(t, out)
	assert.Equal(t, gnet.None, action)

	s.mu.Lock()
	_, ok := s.conns[c]
	s.mu.Unlock()
	assert.True(t, ok)
}

func TestOnCloseForgetsConnection(t *testing.T) {
	s := newTestServer()
	c := &mockConn{}
	s.OnOpen(c)

	action := s.OnClose(c, nil)
	assert.Equal(t, gnet.None, action)

	s.mu.Lock()
	_, ok := s.conns[c]
	s.mu.Unlock()
	assert.False(t, ok)
}

func TestOnTrafficSingleCommand(t *testing.T) {
	s := newTestServer()
	c := &mockConn{}
	s.OnOpen(c)

	c.buf = []byte("*1\r\n$4\r\nPING\r\n")
	s.OnTraffic(c)

	assert.Equal(t, "+PONG\r\n", string(c.written))
}

func TestOnTrafficPipelinedCommandsReplyInOrder(t *testing.T) {
	s := newTestServer()
	c := &mockConn{}
	s.OnOpen(c)

	c.buf = []byte("*3\r\n$3\r\nSET\r\n$1\r\na\r\n$1\r\nb\r\n*2\r\n$3\r\nGET\r\n$1\r\na\r\n")
	s.OnTraffic(c)

	assert.Equal(t, "+OK\r\n$1\r\nb\r\n", string(c.written))
}

func TestOnTrafficPartialFrameWaitsForMoreData(t *testing.T) {
	s := newTestServer()
	c := &mockConn{}
	s.OnOpen(c)

	c.buf = []byte("*2\r\n$3\r\nGET\r\n$3\r\nfoo")
	s.OnTraffic(c)
	assert.Empty(t, c.written)

	c.buf = []byte("\r\n")
	s.OnTraffic(c)
	assert.Equal(t, "$-1\r\n", string(c.written))
}

func TestOnTrafficStopsBatchOnProtocolError(t *testing.T) {
	s := newTestServer()
	c := &mockConn{}
	s.OnOpen(c)

	c.buf = []byte("*1\r\n:5\r\n*1\r\n$4\r\nPING\r\n")
	s.OnTraffic(c)

	assert.Contains(t, string(c.written), "ERR Protocol error")
	assert.NotContains(t, string(c.written), "+PONG")
}

func TestOnTrafficUnknownConnectionIsNoop(t *testing.T) {
	s := newTestServer()
	c := &mockConn{buf: []byte("*1\r\n$4\r\nPING\r\n")}

	action := s.OnTraffic(c)
	assert.Equal(t, gnet.None, action)
	assert.Empty(t, c.written)
}

func TestOnBootAndOnShutdownDoNotPanic(t *testing.T) {
	s := newTestServer()
	require.NotPanics(t, func() {
		s.OnBoot(gnet.Engine{})
		s.OnShutdown(gnet.Engine{})
	})
}

func TestOnTick(t *testing.T) {
	s := newTestServer()
	delay, action := s.OnTick()
	assert.Zero(t, delay)
	assert.Equal(t, gnet.None, action)
}
