package command

import (
	"fmt"

	"github.com/kvresp/rediscore/internal/store"
	"github.com/kvresp/rediscore/pkg/resp"
)

const unbounded = -1

func wrongArity(name string) resp.Value {
	return resp.ErrorValue(fmt.Sprintf("ERR wrong number of arguments for '%s'", name))
}

func isArityCorrect(arity, min, max int) bool {
	if arity < min {
		return false
	}
	if max == unbounded {
		return true
	}
	return arity <= max
}

// MapCommand is a command whose handler operates directly on the selected
// database, the way GET/SET/DEL and friends do.
type MapCommand struct {
	Handler  func(m *store.Map, args [][]byte) resp.Value
	Category []AclCategory
	ArityMin int
	ArityMax int // unbounded (-1) means no upper limit
}

// Execute checks arity and, if correct, runs the handler against m.
func (c *MapCommand) Execute(name string, m *store.Map, args [][]byte) resp.Value {
	if !isArityCorrect(len(args), c.ArityMin, c.ArityMax) {
		return wrongArity(name)
	}
	return c.Handler(m, args)
}

// Interrupt carries the side effect a ControllerCommand handler asked for:
// something that needs help from the Controller (a SELECT, a FLUSHALL, a
// CLIENT LIST render) because it touches state the handler itself has no
// access to.
type Interrupt struct {
	Kind InterruptKind

	AclCat       *AclCategory
	ListFilter   CommandListFilter
	DBIndex      int
	DBIndexOther int
}

type InterruptKind int

const (
	InterruptAclCat InterruptKind = iota
	InterruptClientList
	InterruptClientID
	InterruptCommandCount
	InterruptCommandList
	InterruptSelect
	InterruptSwapDB
	InterruptFlushAll
)

// Outcome is what a ControllerCommand handler produces: either an Interrupt
// for the Controller to act on, or a final reply the handler already knows
// (an argument error, or — for FUNCTION FLUSH/CONFIG GET's stub replies — a
// canned success/null value with no side effect at all).
type Outcome struct {
	interrupt *Interrupt
	value     resp.Value
}

func interruptOutcome(i Interrupt) Outcome { return Outcome{interrupt: &i} }
func finalOutcome(v resp.Value) Outcome    { return Outcome{value: v} }
func errOutcome(msg string) Outcome        { return finalOutcome(resp.ErrorValue(msg)) }

// ControllerCommand is a command whose handler cannot act alone: SELECT,
// SWAPDB, FLUSHALL and the CLIENT/ACL/COMMAND subcommands all need the
// Controller to read or mutate state the handler itself doesn't hold.
type ControllerCommand struct {
	Handler  func(args [][]byte) Outcome
	Category []AclCategory
	ArityMin int
	ArityMax int
}

func (c *ControllerCommand) isArityCorrect(arity int) bool {
	return isArityCorrect(arity, c.ArityMin, c.ArityMax)
}

func (c *ControllerCommand) execute(name string, args [][]byte) Outcome {
	if !c.isArityCorrect(len(args)) {
		return errOutcome(fmt.Sprintf("ERR wrong number of arguments for '%s'", name))
	}
	return c.Handler(args)
}

// ContainerCommand routes a subcommand name (CLIENT ID, ACL CAT, COMMAND
// LIST, ...) to one of its registered ControllerCommands. A container may
// additionally have its own root handler for when it's invoked with no
// subcommand at all (only COMMAND does, and only to report "not
// implemented yet").
type ContainerCommand struct {
	Handler     func(args [][]byte) Outcome
	Category    []AclCategory
	Subcommands map[string]*ControllerCommand
}

func (c *ContainerCommand) isArityCorrect(arity int) bool {
	if c.Handler == nil {
		return arity >= 1
	}
	return true
}

func (c *ContainerCommand) execute(name string, args [][]byte) Outcome {
	if !c.isArityCorrect(len(args)) {
		return errOutcome(fmt.Sprintf("ERR wrong number of arguments for '%s'", name))
	}
	if len(args) == 0 {
		return c.Handler(args)
	}
	sub := asciiLower(string(args[0]))
	cmd, ok := c.Subcommands[sub]
	if !ok {
		return errOutcome(fmt.Sprintf("ERR unknown subcommand for '%s'", name))
	}
	return cmd.execute(name+" "+sub, args[1:])
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
