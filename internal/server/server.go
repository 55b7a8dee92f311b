// Package server wires the gnet event loop to the command dispatcher. It
// owns no key-value state itself: every connection's buffered bytes are
// fed through a pkg/resp.Parser and every framed request is handed to a
// command.Controller, exactly as far as the networking layer's job goes.
package server

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/gnet/v2"
	"go.uber.org/zap"

	"github.com/kvresp/rediscore/internal/command"
	"github.com/kvresp/rediscore/internal/connstore"
	"github.com/kvresp/rediscore/pkg/resp"
)

// Options controls the gnet engine this server runs under. It mirrors the
// subset of the teacher's networking knobs a RESP2 key-value server needs;
// TLS termination and the teacher's loopback-proxy TLS support have no
// caller in this repo's scope and are not carried over.
type Options struct {
	Multicore       bool
	LockOSThread    bool
	ReadBufferCap   int
	LB              gnet.LoadBalancing
	NumEventLoop    int
	ReusePort       bool
	EdgeTriggeredIO bool
}

func (o Options) toGnetOptions() []gnet.Option {
	var opts []gnet.Option
	if o.Multicore {
		opts = append(opts, gnet.WithMulticore(true))
	}
	if o.LockOSThread {
		opts = append(opts, gnet.WithLockOSThread(true))
	}
	if o.ReadBufferCap > 0 {
		opts = append(opts, gnet.WithReadBufferCap(o.ReadBufferCap))
	}
	if o.NumEventLoop > 0 {
		opts = append(opts, gnet.WithNumEventLoop(o.NumEventLoop))
	} else if o.LB != gnet.RoundRobin {
		opts = append(opts, gnet.WithLoadBalancing(o.LB))
	}
	if o.ReusePort {
		opts = append(opts, gnet.WithReusePort(true))
	}
	if o.EdgeTriggeredIO {
		opts = append(opts, gnet.WithEdgeTriggeredIO(true))
	}
	return opts
}

// connState is the per-gnet.Conn bookkeeping: a RESP2 parser accumulating
// partial frames, and the connstore.ID this connection was assigned on
// OnOpen so OnTraffic can dispatch through the right selected database.
type connState struct {
	parser *resp.Parser
	id     connstore.ID
}

// Server implements gnet.EventHandler, routing parsed RESP2 requests
// through a command.Controller. One Server can back either a single
// event-loop or, with Options.Multicore, several in parallel — the
// Controller's own mutex is what makes the latter safe, the same way the
// teacher's RedHub.connSync guards its connection map across event loops.
type Server struct {
	ctrl *command.Controller
	log  *zap.Logger

	mu    sync.Mutex
	conns map[gnet.Conn]*connState
	eng   gnet.Engine
}

// New returns a Server dispatching through ctrl and logging via log.
func New(ctrl *command.Controller, log *zap.Logger) *Server {
	return &Server{
		ctrl:  ctrl,
		log:   log,
		conns: make(map[gnet.Conn]*connState),
	}
}

// OnBoot records the running engine (so Shutdown can later stop it) and logs
// that the engine has started accepting connections.
func (s *Server) OnBoot(eng gnet.Engine) gnet.Action {
	s.mu.Lock()
	s.eng = eng
	s.mu.Unlock()

	s.log.Info("server booted")
	return gnet.None
}

// Shutdown stops the gnet engine this Server is running under. It is a
// no-op if called before OnBoot has run.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	eng := s.eng
	s.mu.Unlock()
	return eng.Stop(ctx)
}

// OnShutdown logs engine shutdown.
func (s *Server) OnShutdown(eng gnet.Engine) {
	s.log.Info("server shutting down")
}

// OnOpen registers the new connection with the controller's connection
// store and starts it a fresh parser.
func (s *Server) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	id := s.ctrl.Connect(c.RemoteAddr().String())

	s.mu.Lock()
	s.conns[c] = &connState{parser: resp.NewParser(), id: id}
	s.mu.Unlock()

	s.log.Debug("connection opened", zap.String("addr", c.RemoteAddr().String()), zap.Uint64("id", uint64(id)))
	return nil, gnet.None
}

// OnClose forgets the connection's state.
func (s *Server) OnClose(c gnet.Conn, err error) gnet.Action {
	s.mu.Lock()
	cs, ok := s.conns[c]
	delete(s.conns, c)
	s.mu.Unlock()

	if ok {
		s.ctrl.Disconnect(cs.id)
		if err != nil {
			s.log.Debug("connection closed", zap.Uint64("id", uint64(cs.id)), zap.Error(err))
		}
	}
	return gnet.None
}

// OnTraffic drains every complete request currently buffered for c,
// dispatches each to the controller in arrival order, and writes all
// replies back in a single batched write. It stops draining the batch as
// soon as the parser reports a malformed frame, replies with that one
// protocol error, and leaves the connection open — matching gnet's own
// model of a transient per-request failure rather than a fatal one.
func (s *Server) OnTraffic(c gnet.Conn) gnet.Action {
	s.mu.Lock()
	cs, ok := s.conns[c]
	s.mu.Unlock()
	if !ok {
		return gnet.None
	}

	data, _ := c.Next(-1)
	if len(data) == 0 {
		return gnet.None
	}
	cs.parser.Feed(data)

	var out []byte
	for {
		cmd, err := cs.parser.Next()
		if err != nil {
			out = resp.AppendError(out, "ERR Protocol error: "+err.Error())
			break
		}
		if cmd == nil {
			break
		}
		if len(cmd.Args) == 0 {
			// An empty multibulk request ("*0\r\n") names no command; Redis
			// itself treats it as a silent no-op rather than an error.
			continue
		}
		reply := s.ctrl.Execute(cs.id, cmd.Args)
		out = reply.Encode(out)
	}

	if len(out) > 0 {
		_, _ = c.Write(out)
	}
	return gnet.None
}

// OnTick is unused; this server runs no periodic background work.
func (s *Server) OnTick() (delay time.Duration, action gnet.Action) {
	return 0, gnet.None
}

// ListenAndServe starts the server on addr (e.g. "tcp://127.0.0.1:7379")
// and blocks until the engine stops or an error occurs.
func ListenAndServe(addr string, opts Options, s *Server) error {
	return gnet.Run(s, addr, opts.toGnetOptions()...)
}
