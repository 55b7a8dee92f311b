package command

import (
	"sort"
	"strconv"

	"github.com/kvresp/rediscore/internal/glob"
	"github.com/kvresp/rediscore/internal/store"
	"github.com/kvresp/rediscore/pkg/resp"
)

// CommandListFilter selects which commands COMMAND LIST reports.
type CommandListFilter struct {
	Kind     CommandListFilterKind
	Category AclCategory
	Pattern  string
}

type CommandListFilterKind int

const (
	FilterAll CommandListFilterKind = iota
	FilterCategory
	FilterPattern
)

// Registry holds every command this server dispatches, split the same
// three ways the dispatcher checks them in: simple commands (act directly
// on the selected database), container commands (subcommand routers like
// CLIENT/ACL/COMMAND/FUNCTION/CONFIG), and controller commands (SELECT,
// FLUSHALL, SWAPDB — top-level commands that still need Controller help).
type Registry struct {
	Simple     map[string]*MapCommand
	Container  map[string]*ContainerCommand
	Controller map[string]*ControllerCommand

	names      []string
	byCategory map[AclCategory][]string
}

func parseUsize(b []byte) (int, bool) {
	n, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// NewRegistry builds the full command table.
func NewRegistry() *Registry {
	r := &Registry{
		Simple:     make(map[string]*MapCommand),
		Container:  make(map[string]*ContainerCommand),
		Controller: make(map[string]*ControllerCommand),
	}
	r.registerSimpleCommands()
	r.registerControllerCommands()
	r.registerContainerCommands()
	r.buildNameIndex()
	return r
}

func (r *Registry) registerSimpleCommands() {
	r.Simple["flushdb"] = &MapCommand{
		ArityMin: 0, ArityMax: 0,
		Category: []AclCategory{CategoryKeyspace, CategoryWrite, CategorySlow, CategoryDangerous},
		Handler: func(m *store.Map, _ [][]byte) resp.Value {
			return m.FlushDB()
		},
	}
	r.Simple["ping"] = &MapCommand{
		ArityMin: 0, ArityMax: 1,
		Category: []AclCategory{CategoryFast, CategoryConnection},
		Handler: func(_ *store.Map, args [][]byte) resp.Value {
			if len(args) == 1 {
				return resp.BulkValue(args[0])
			}
			return resp.SimpleStringValue("PONG")
		},
	}
	r.Simple["echo"] = &MapCommand{
		ArityMin: 1, ArityMax: 1,
		Category: []AclCategory{CategoryFast, CategoryConnection},
		Handler: func(_ *store.Map, args [][]byte) resp.Value {
			return resp.BulkValue(args[0])
		},
	}
	r.Simple["dbsize"] = &MapCommand{
		ArityMin: 0, ArityMax: 0,
		Category: []AclCategory{CategoryKeyspace, CategoryRead, CategoryFast},
		Handler: func(m *store.Map, _ [][]byte) resp.Value {
			return resp.IntegerValue(int64(m.Len()))
		},
	}
	r.Simple["exists"] = &MapCommand{
		ArityMin: 1, ArityMax: unbounded,
		Category: []AclCategory{CategoryKeyspace, CategoryRead, CategoryFast},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			return m.Exists(bytesToStrings(args))
		},
	}
	r.Simple["del"] = &MapCommand{
		ArityMin: 1, ArityMax: unbounded,
		Category: []AclCategory{CategoryKeyspace, CategoryWrite, CategorySlow},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			return m.Del(bytesToStrings(args))
		},
	}
	r.Simple["keys"] = &MapCommand{
		ArityMin: 1, ArityMax: 1,
		Category: []AclCategory{CategoryKeyspace, CategoryRead, CategorySlow, CategoryDangerous},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			return m.Keys(string(args[0]))
		},
	}

	r.registerStringCommands()
}

func (r *Registry) registerStringCommands() {
	r.Simple["get"] = &MapCommand{
		ArityMin: 1, ArityMax: 1,
		Category: []AclCategory{CategoryRead, CategoryString, CategoryFast},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			return m.Get(string(args[0]))
		},
	}
	r.Simple["set"] = &MapCommand{
		ArityMin: 2, ArityMax: 2,
		Category: []AclCategory{CategoryWrite, CategoryString, CategorySlow},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			return m.Set(string(args[0]), args[1])
		},
	}
	r.Simple["mget"] = &MapCommand{
		ArityMin: 1, ArityMax: unbounded,
		Category: []AclCategory{CategoryRead, CategoryString, CategoryFast},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			return m.MGet(bytesToStrings(args))
		},
	}
	r.Simple["mset"] = &MapCommand{
		ArityMin: 2, ArityMax: unbounded,
		Category: []AclCategory{CategoryWrite, CategoryString, CategorySlow},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			if len(args)%2 != 0 {
				return wrongArity("mset")
			}
			return m.MSet(args)
		},
	}
	r.Simple["msetnx"] = &MapCommand{
		ArityMin: 2, ArityMax: unbounded,
		Category: []AclCategory{CategoryWrite, CategoryString, CategorySlow},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			if len(args)%2 != 0 {
				return wrongArity("msetnx")
			}
			return m.MSetNX(args)
		},
	}
	r.Simple["append"] = &MapCommand{
		ArityMin: 2, ArityMax: 2,
		Category: []AclCategory{CategoryWrite, CategoryString, CategoryFast},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			return m.Append(string(args[0]), args[1])
		},
	}
	r.Simple["strlen"] = &MapCommand{
		ArityMin: 1, ArityMax: 1,
		Category: []AclCategory{CategoryRead, CategoryString, CategoryFast},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			return m.StrLen(string(args[0]))
		},
	}
	r.Simple["incr"] = &MapCommand{
		ArityMin: 1, ArityMax: 1,
		Category: []AclCategory{CategoryWrite, CategoryString, CategoryFast},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			return m.Incr(string(args[0]))
		},
	}
	r.Simple["decr"] = &MapCommand{
		ArityMin: 1, ArityMax: 1,
		Category: []AclCategory{CategoryWrite, CategoryString, CategoryFast},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			return m.Decr(string(args[0]))
		},
	}
	r.Simple["incrby"] = &MapCommand{
		ArityMin: 2, ArityMax: 2,
		Category: []AclCategory{CategoryWrite, CategoryString, CategoryFast},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			n, err := strconv.ParseInt(string(args[1]), 10, 64)
			if err != nil {
				return resp.ErrorValue("ERR value is not an integer")
			}
			return m.IncrBy(string(args[0]), n)
		},
	}
	r.Simple["decrby"] = &MapCommand{
		ArityMin: 2, ArityMax: 2,
		Category: []AclCategory{CategoryWrite, CategoryString, CategoryFast},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			n, err := strconv.ParseInt(string(args[1]), 10, 64)
			if err != nil {
				return resp.ErrorValue("ERR value is not an integer")
			}
			return m.DecrBy(string(args[0]), n)
		},
	}
	r.Simple["incrbyfloat"] = &MapCommand{
		ArityMin: 2, ArityMax: 2,
		Category: []AclCategory{CategoryWrite, CategoryString, CategoryFast},
		Handler: func(m *store.Map, args [][]byte) resp.Value {
			n, err := strconv.ParseFloat(string(args[1]), 64)
			if err != nil {
				return resp.ErrorValue("ERR value is not an floating number")
			}
			return m.IncrByFloat(string(args[0]), n)
		},
	}
}

func (r *Registry) registerControllerCommands() {
	r.Controller["select"] = &ControllerCommand{
		ArityMin: 1, ArityMax: 1,
		Category: []AclCategory{CategoryFast, CategoryConnection},
		Handler: func(args [][]byte) Outcome {
			n, ok := parseUsize(args[0])
			if !ok {
				return errOutcome("ERR invalid argument for 'select'")
			}
			return interruptOutcome(Interrupt{Kind: InterruptSelect, DBIndex: n})
		},
	}
	r.Controller["flushall"] = &ControllerCommand{
		ArityMin: 0, ArityMax: 0,
		Category: []AclCategory{CategoryKeyspace, CategoryWrite, CategorySlow, CategoryDangerous},
		Handler: func(_ [][]byte) Outcome {
			return interruptOutcome(Interrupt{Kind: InterruptFlushAll})
		},
	}
	r.Controller["swapdb"] = &ControllerCommand{
		ArityMin: 2, ArityMax: 2,
		Category: []AclCategory{CategoryKeyspace, CategoryWrite, CategoryFast, CategoryDangerous},
		Handler: func(args [][]byte) Outcome {
			db1, ok := parseUsize(args[0])
			if !ok {
				return errOutcome("ERR invalid first DB index")
			}
			db2, ok := parseUsize(args[1])
			if !ok {
				return errOutcome("ERR invalid second DB index")
			}
			return interruptOutcome(Interrupt{Kind: InterruptSwapDB, DBIndex: db1, DBIndexOther: db2})
		},
	}
}

func (r *Registry) registerContainerCommands() {
	r.Container["acl"] = &ContainerCommand{
		Category: []AclCategory{CategorySlow},
		Subcommands: map[string]*ControllerCommand{
			"cat": {
				ArityMin: 0, ArityMax: 1,
				Category: []AclCategory{CategorySlow},
				Handler: func(args [][]byte) Outcome {
					if len(args) == 0 {
						return interruptOutcome(Interrupt{Kind: InterruptAclCat})
					}
					cat, ok := ParseAclCategory(string(args[0]))
					if !ok {
						return errOutcome("ERR unknown ACL category for 'acl cat'")
					}
					return interruptOutcome(Interrupt{Kind: InterruptAclCat, AclCat: &cat})
				},
			},
		},
	}

	r.Container["client"] = &ContainerCommand{
		Category: []AclCategory{CategorySlow},
		Subcommands: map[string]*ControllerCommand{
			"id": {
				ArityMin: 0, ArityMax: 0,
				Category: []AclCategory{CategorySlow, CategoryConnection},
				Handler: func(_ [][]byte) Outcome {
					return interruptOutcome(Interrupt{Kind: InterruptClientID})
				},
			},
			"list": {
				ArityMin: 0, ArityMax: 0,
				Category: []AclCategory{CategoryAdmin, CategorySlow, CategoryDangerous, CategoryConnection},
				Handler: func(_ [][]byte) Outcome {
					return interruptOutcome(Interrupt{Kind: InterruptClientList})
				},
			},
		},
	}

	r.Container["command"] = &ContainerCommand{
		Category: []AclCategory{CategorySlow, CategoryConnection},
		Handler: func(_ [][]byte) Outcome {
			return errOutcome("ERR 'command' is not implemented yet")
		},
		Subcommands: map[string]*ControllerCommand{
			"count": {
				ArityMin: 0, ArityMax: 0,
				Category: []AclCategory{CategorySlow, CategoryConnection},
				Handler: func(_ [][]byte) Outcome {
					return interruptOutcome(Interrupt{Kind: InterruptCommandCount})
				},
			},
			"list": {
				ArityMin: 0, ArityMax: 3,
				Category: []AclCategory{CategorySlow, CategoryConnection},
				Handler: func(args [][]byte) Outcome {
					if len(args) == 0 {
						return interruptOutcome(Interrupt{
							Kind:       InterruptCommandList,
							ListFilter: CommandListFilter{Kind: FilterAll},
						})
					}
					if len(args) != 3 {
						return errOutcome("ERR wrong number of arguments for 'command list'")
					}
					if asciiLower(string(args[0])) != "filterby" {
						return errOutcome("ERR invalid argument for 'command list'")
					}
					switch asciiLower(string(args[1])) {
					case "module":
						return errOutcome("ERR filterby module is not implemented yet")
					case "aclcat":
						cat, ok := ParseAclCategory(string(args[2]))
						if !ok {
							return errOutcome("ERR unknown ACL category for 'command list'")
						}
						return interruptOutcome(Interrupt{
							Kind:       InterruptCommandList,
							ListFilter: CommandListFilter{Kind: FilterCategory, Category: cat},
						})
					case "pattern":
						return interruptOutcome(Interrupt{
							Kind:       InterruptCommandList,
							ListFilter: CommandListFilter{Kind: FilterPattern, Pattern: string(args[2])},
						})
					default:
						return errOutcome("ERR unknown filter for 'command list'")
					}
				},
			},
		},
	}

	r.Container["function"] = &ContainerCommand{
		Category: []AclCategory{CategorySlow},
		Subcommands: map[string]*ControllerCommand{
			"flush": {
				ArityMin: 0, ArityMax: 1,
				Category: []AclCategory{CategoryWrite, CategorySlow, CategoryScripting},
				Handler: func(_ [][]byte) Outcome {
					return finalOutcome(resp.OKValue())
				},
			},
		},
	}

	r.Container["config"] = &ContainerCommand{
		Category: []AclCategory{CategorySlow},
		Subcommands: map[string]*ControllerCommand{
			"get": {
				ArityMin: 1, ArityMax: unbounded,
				Category: []AclCategory{CategoryAdmin, CategorySlow, CategoryDangerous},
				Handler: func(_ [][]byte) Outcome {
					return finalOutcome(resp.NullArrayValue())
				},
			},
		},
	}
}

func bytesToStrings(args [][]byte) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = string(a)
	}
	return out
}

// buildNameIndex derives the sorted "all command names" list and the
// per-category command lists COMMAND LIST / ACL CAT report, the same way
// the source indexes once at startup rather than recomputing per call.
func (r *Registry) buildNameIndex() {
	nameToCategory := make(map[string][]AclCategory)
	for name, cmd := range r.Simple {
		nameToCategory[name] = cmd.Category
	}
	for name, cmd := range r.Container {
		nameToCategory[name] = cmd.Category
		for sub, subCmd := range cmd.Subcommands {
			nameToCategory[name+"|"+sub] = subCmd.Category
		}
	}
	for name, cmd := range r.Controller {
		nameToCategory[name] = cmd.Category
	}

	names := make([]string, 0, len(nameToCategory))
	for name := range nameToCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	r.names = names

	byCategory := make(map[AclCategory][]string)
	for name, cats := range nameToCategory {
		for _, cat := range cats {
			byCategory[cat] = append(byCategory[cat], name)
		}
	}
	for cat := range byCategory {
		sort.Strings(byCategory[cat])
	}
	r.byCategory = byCategory
}

// Count is the total number of simple + controller + container (including
// subcommands) commands registered. Kept equal to len(r.names): every name
// COMMAND LIST can report is dispatchable, including a bare container name
// like "acl" (it resolves to a command, just one with an arity floor of 1).
func (r *Registry) Count() int64 {
	return int64(len(r.names))
}

// List renders COMMAND LIST for the given filter.
func (r *Registry) List(filter CommandListFilter) resp.Value {
	var names []string
	switch filter.Kind {
	case FilterAll:
		names = r.names
	case FilterCategory:
		names = r.byCategory[filter.Category]
	case FilterPattern:
		finder := glob.New(filter.Pattern)
		for _, n := range r.names {
			if finder.Matches([]byte(n)) {
				names = append(names, n)
			}
		}
	}
	items := make([]resp.Value, len(names))
	for i, n := range names {
		items[i] = resp.BulkStringValue(n)
	}
	return resp.ArrayValue(items)
}

// AclCatNames renders ACL CAT cat (commands in a single category) or, with
// no category given, the list of category names ACL CAT reports.
func (r *Registry) AclCatNames(cat *AclCategory) resp.Value {
	if cat == nil {
		all := AllCategories()
		names := make([]string, len(all))
		for i, c := range all {
			names[i] = c.String()
		}
		sort.Strings(names)
		items := make([]resp.Value, len(names))
		for i, n := range names {
			items[i] = resp.BulkStringValue(n)
		}
		return resp.ArrayValue(items)
	}
	names := r.byCategory[*cat]
	items := make([]resp.Value, len(names))
	for i, n := range names {
		items[i] = resp.BulkStringValue(n)
	}
	return resp.ArrayValue(items)
}
