// Package connstore tracks the set of live connections and the per-connection
// state (the selected database and the peer address) that CLIENT/SELECT commands
// read and mutate.
package connstore

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/kvresp/rediscore/pkg/resp"
)

// ID identifies a connection. IDs are assigned in strictly increasing order
// and never reused, matching the ordering CLIENT LIST reports connections
// in.
type ID uint64

// State is the per-connection state SELECT and CLIENT LIST observe.
type State struct {
	DB   int
	Addr string
}

// Store is the live connection registry. Its zero value is not usable; use
// New.
type Store struct {
	mu     sync.Mutex
	data   map[ID]*State
	nextID uint64

	cacheFingerprint uint64
	cacheValid       bool
	cacheList        resp.Value
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: make(map[ID]*State)}
}

// Connect registers a newly accepted connection at addr and returns its ID.
func (s *Store) Connect(addr string) ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ID(s.nextID)
	s.nextID++
	s.data[id] = &State{DB: 0, Addr: addr}
	s.cacheValid = false
	return id
}

// Disconnect removes a connection's state.
func (s *Store) Disconnect(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, id)
	s.cacheValid = false
}

// Has reports whether id is currently tracked.
func (s *Store) Has(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.data[id]
	return ok
}

// DB returns the currently selected database index for id.
func (s *Store) DB(id ID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.data[id]
	if !ok {
		return 0, false
	}
	return st.DB, true
}

// SetDB updates the selected database index for id. Returns false if id is
// not tracked.
func (s *Store) SetDB(id ID, dbIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.data[id]
	if !ok {
		return false
	}
	st.DB = dbIndex
	return true
}

// ClientID projects id onto the non-negative int64 range CLIENT ID replies
// with, saturating at math.MaxInt64 rather than wrapping.
func (s *Store) ClientID(id ID) int64 {
	const maxInt64 = 1<<63 - 1
	if uint64(id) > maxInt64 {
		return maxInt64
	}
	return int64(id)
}

// List renders CLIENT LIST: one "id=<n> addr=<host:port>\n" line per live
// connection, in ascending ID order. Repeated calls between connect/
// disconnect events reuse the previously rendered bulk string.
func (s *Store) List() resp.Value {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp := s.fingerprint()
	if s.cacheValid && fp == s.cacheFingerprint {
		return s.cacheList
	}

	ids := make([]ID, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "id=%d addr=%s\n", uint64(id), s.data[id].Addr)
	}

	s.cacheList = resp.BulkStringValue(b.String())
	s.cacheFingerprint = fp
	s.cacheValid = true
	return s.cacheList
}

// fingerprint hashes the current set of live connection IDs so List can
// detect whether its cached rendering is still current without re-walking
// and re-formatting every connection on every call.
func (s *Store) fingerprint() uint64 {
	ids := make([]uint64, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, uint64(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	h := xxhash.New()
	var buf [8]byte
	for _, id := range ids {
		binary.LittleEndian.PutUint64(buf[:], id)
		h.Write(buf[:])
	}
	return h.Sum64()
}

// String renders an ID the way CLIENT LIST does, for logging.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
