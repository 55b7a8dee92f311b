package connstore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvresp/rediscore/pkg/resp"
)

func TestConnectAssignsMonotonicIDs(t *testing.T) {
	s := New()
	a := s.Connect("127.0.0.1:1")
	b := s.Connect("127.0.0.1:2")
	assert.Less(t, uint64(a), uint64(b))
}

func TestDisconnectRemovesState(t *testing.T) {
	s := New()
	id := s.Connect("127.0.0.1:1")
	require.True(t, s.Has(id))

	s.Disconnect(id)
	assert.False(t, s.Has(id))

	_, ok := s.DB(id)
	assert.False(t, ok)
}

func TestSetDBAndGetDB(t *testing.T) {
	s := New()
	id := s.Connect("127.0.0.1:1")

	ok := s.SetDB(id, 3)
	require.True(t, ok)

	db, ok := s.DB(id)
	require.True(t, ok)
	assert.Equal(t, 3, db)
}

func TestSetDBUnknownConnection(t *testing.T) {
	s := New()
	ok := s.SetDB(ID(999), 1)
	assert.False(t, ok)
}

func TestListAscendingOrderAndFormat(t *testing.T) {
	s := New()
	a := s.Connect("10.0.0.1:1111")
	b := s.Connect("10.0.0.2:2222")

	got := s.List()
	require.Equal(t, resp.KindBulkString, got.Kind())

	encoded := string(got.Encode(nil))
	wantBody := "id=" + a.String() + " addr=10.0.0.1:1111\n" +
		"id=" + b.String() + " addr=10.0.0.2:2222\n"
	assert.Contains(t, encoded, wantBody)
}

func TestListCacheInvalidatedByDisconnect(t *testing.T) {
	s := New()
	a := s.Connect("10.0.0.1:1")
	_ = s.List()

	s.Disconnect(a)
	got := s.List()
	assert.NotContains(t, string(got.Encode(nil)), "10.0.0.1:1")
}

func TestClientIDSaturates(t *testing.T) {
	s := New()
	id := s.Connect("127.0.0.1:1")
	assert.Equal(t, int64(0), s.ClientID(id))
	assert.Equal(t, int64(math.MaxInt64), s.ClientID(ID(math.MaxUint64)))
}
