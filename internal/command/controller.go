package command

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/kvresp/rediscore/internal/connstore"
	"github.com/kvresp/rediscore/internal/store"
	"github.com/kvresp/rediscore/pkg/resp"
)

// Controller is the single dispatch point every parsed request goes
// through: it owns the database fleet, the live connection registry and
// the command table, and resolves each request to a reply. Under gnet's
// multicore mode more than one event-loop goroutine can reach Execute
// concurrently, so all Controller state is guarded by one mutex — this
// server has no per-key or per-database locking finer than that.
type Controller struct {
	mu    sync.Mutex
	fleet *store.Fleet
	conns *connstore.Store
	reg   *Registry
}

// New builds a Controller over dbCount databases.
func New(dbCount int) *Controller {
	return &Controller{
		fleet: store.NewFleet(dbCount),
		conns: connstore.New(),
		reg:   NewRegistry(),
	}
}

// Connect registers a newly accepted connection and returns its ID.
func (c *Controller) Connect(addr string) connstore.ID {
	return c.conns.Connect(addr)
}

// Disconnect forgets a closed connection's state.
func (c *Controller) Disconnect(id connstore.ID) {
	c.conns.Disconnect(id)
}

// Execute resolves one parsed request to a reply. args[0] is the command
// name; args[1:] are its arguments. The caller must have already confirmed
// id is a connection this Controller knows about.
func (c *Controller) Execute(id connstore.ID, args [][]byte) resp.Value {
	c.mu.Lock()
	defer c.mu.Unlock()

	nameBytes := args[0]
	if !utf8.Valid(nameBytes) {
		return resp.ErrorValue(fmt.Sprintf("ERR unknown command '%s'", nameBytes))
	}
	name := asciiLower(string(nameBytes))
	rest := args[1:]

	if cmd, ok := c.reg.Simple[name]; ok {
		dbIndex, _ := c.conns.DB(id)
		m, ok := c.fleet.Get(dbIndex)
		if !ok {
			return resp.ErrorValue("ERR selected DB no longer exists")
		}
		return cmd.Execute(name, m, rest)
	}

	if cmd, ok := c.reg.Container[name]; ok {
		return c.handleOutcome(cmd.execute(name, rest), id)
	}

	if cmd, ok := c.reg.Controller[name]; ok {
		return c.handleOutcome(cmd.execute(name, rest), id)
	}

	return resp.ErrorValue(fmt.Sprintf("ERR unknown command '%s'", nameBytes))
}

func (c *Controller) handleOutcome(o Outcome, id connstore.ID) resp.Value {
	if o.interrupt == nil {
		return o.value
	}
	switch o.interrupt.Kind {
	case InterruptAclCat:
		return c.reg.AclCatNames(o.interrupt.AclCat)
	case InterruptClientList:
		return c.conns.List()
	case InterruptClientID:
		return resp.IntegerValue(c.conns.ClientID(id))
	case InterruptCommandCount:
		return resp.IntegerValue(c.reg.Count())
	case InterruptCommandList:
		return c.reg.List(o.interrupt.ListFilter)
	case InterruptSelect:
		if _, ok := c.fleet.Get(o.interrupt.DBIndex); !ok {
			return resp.ErrorValue("ERR DB index is out of range")
		}
		c.conns.SetDB(id, o.interrupt.DBIndex)
		return resp.OKValue()
	case InterruptSwapDB:
		db1, db2 := o.interrupt.DBIndex, o.interrupt.DBIndexOther
		if _, ok := c.fleet.Get(db1); !ok {
			return resp.ErrorValue("ERR first DB index is out of range")
		}
		if _, ok := c.fleet.Get(db2); !ok {
			return resp.ErrorValue("ERR second DB index is out of range")
		}
		c.fleet.Swap(db1, db2)
		return resp.OKValue()
	case InterruptFlushAll:
		c.fleet.FlushAll()
		return resp.OKValue()
	default:
		return resp.ErrorValue("ERR internal error: unhandled interrupt")
	}
}
