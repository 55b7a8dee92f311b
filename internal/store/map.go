package store

import (
	"math"
	"strconv"

	"github.com/kvresp/rediscore/internal/glob"
	"github.com/kvresp/rediscore/pkg/resp"
)

// Map is one selectable database: a flat string-keyed namespace. All
// methods are synchronous and unexported-concurrency-safe only insofar as
// the caller serializes access — callers run behind the single command
// dispatch path, so Map itself carries no lock.
type Map struct {
	data map[string]Value
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{data: make(map[string]Value)}
}

// FlushDB discards every key in this Map.
func (m *Map) FlushDB() resp.Value {
	m.data = make(map[string]Value)
	return resp.OKValue()
}

// Len reports the number of keys currently stored.
func (m *Map) Len() int {
	return len(m.data)
}

func notAnInteger() resp.Value {
	return resp.ErrorValue("ERR value is not an integer")
}

// checkIncrDecrTarget ensures key holds a parseable integer string,
// creating it as "0" if absent. It returns ok=false together with an error
// reply when the existing value can't be used as an integer accumulator.
func (m *Map) checkIncrDecrTarget(key string) (ok bool, errVal resp.Value) {
	v, exists := m.data[key]
	if !exists {
		m.data[key] = stringValue([]byte("0"))
		return true, resp.Value{}
	}
	if v.Kind != KindString {
		return false, notAnInteger()
	}
	if _, err := strconv.ParseInt(string(v.Str), 10, 64); err != nil {
		return false, notAnInteger()
	}
	return true, resp.Value{}
}

// Get implements GET.
func (m *Map) Get(key string) resp.Value {
	v, ok := m.data[key]
	if !ok {
		return resp.NullBulkStringValue()
	}
	if v.Kind != KindString {
		return resp.ErrorValue("ERR wrong target type for 'get'")
	}
	return resp.BulkValue(v.Str)
}

// MGet implements MGET: one reply per key, NullBulkString for any key that
// is absent or not a string.
func (m *Map) MGet(keys []string) resp.Value {
	items := make([]resp.Value, len(keys))
	for i, k := range keys {
		if v, ok := m.data[k]; ok && v.Kind == KindString {
			items[i] = resp.BulkValue(v.Str)
		} else {
			items[i] = resp.NullBulkStringValue()
		}
	}
	return resp.ArrayValue(items)
}

// MSet implements MSET: keyValues must hold an even number of elements,
// alternating key, value. Always succeeds.
func (m *Map) MSet(keyValues [][]byte) resp.Value {
	for i := 0; i < len(keyValues); i += 2 {
		m.data[string(keyValues[i])] = stringValue(keyValues[i+1])
	}
	return resp.OKValue()
}

// MSetNX implements MSETNX: if any of the given keys already exists, this
// is a no-op returning Integer(0). Otherwise every pair is written and it
// returns Integer(1).
func (m *Map) MSetNX(keyValues [][]byte) resp.Value {
	for i := 0; i < len(keyValues); i += 2 {
		if _, exists := m.data[string(keyValues[i])]; exists {
			return resp.IntegerValue(0)
		}
	}
	for i := 0; i < len(keyValues); i += 2 {
		m.data[string(keyValues[i])] = stringValue(keyValues[i+1])
	}
	return resp.IntegerValue(1)
}

// Set implements SET key value, unconditionally overwriting key.
func (m *Map) Set(key string, value []byte) resp.Value {
	m.data[key] = stringValue(value)
	return resp.OKValue()
}

// Append implements APPEND: creates key as value if absent, otherwise
// concatenates. Returns the resulting length.
func (m *Map) Append(key string, value []byte) resp.Value {
	v, ok := m.data[key]
	if !ok {
		m.data[key] = stringValue(append([]byte(nil), value...))
		return resp.IntegerValue(int64(len(value)))
	}
	if v.Kind != KindString {
		return resp.ErrorValue("ERR wrong target type for 'append'")
	}
	v.Str = append(v.Str, value...)
	m.data[key] = v
	return resp.IntegerValue(int64(len(v.Str)))
}

// StrLen implements STRLEN.
func (m *Map) StrLen(key string) resp.Value {
	v, ok := m.data[key]
	if !ok {
		return resp.IntegerValue(0)
	}
	if v.Kind != KindString {
		return resp.ErrorValue("ERR wrong target type for 'strlen'")
	}
	return resp.IntegerValue(int64(len(v.Str)))
}

func (m *Map) addInt64(key string, n int64) resp.Value {
	if ok, errVal := m.checkIncrDecrTarget(key); !ok {
		return errVal
	}
	v := m.data[key]
	old, err := strconv.ParseInt(string(v.Str), 10, 64)
	if err != nil {
		return notAnInteger()
	}
	if (n > 0 && old > math.MaxInt64-n) || (n < 0 && old < math.MinInt64-n) {
		return resp.ErrorValue("ERR integer overflow")
	}
	sum := old + n
	v.Str = []byte(strconv.FormatInt(sum, 10))
	m.data[key] = v
	return resp.IntegerValue(sum)
}

// Incr implements INCR.
func (m *Map) Incr(key string) resp.Value { return m.addInt64(key, 1) }

// Decr implements DECR.
func (m *Map) Decr(key string) resp.Value { return m.addInt64(key, -1) }

// IncrBy implements INCRBY.
func (m *Map) IncrBy(key string, n int64) resp.Value { return m.addInt64(key, n) }

// DecrBy implements DECRBY.
func (m *Map) DecrBy(key string, n int64) resp.Value {
	if n == math.MinInt64 {
		return resp.ErrorValue("ERR integer overflow")
	}
	return m.addInt64(key, -n)
}

// IncrByFloat implements INCRBYFLOAT.
func (m *Map) IncrByFloat(key string, n float64) resp.Value {
	v, ok := m.data[key]
	if !ok {
		s := strconv.FormatFloat(n, 'f', -1, 64)
		m.data[key] = stringValue([]byte(s))
		return resp.BulkStringValue(s)
	}
	if v.Kind != KindString {
		return notAnInteger()
	}
	old, err := strconv.ParseFloat(string(v.Str), 64)
	if err != nil {
		return notAnInteger()
	}
	sum := old + n
	s := strconv.FormatFloat(sum, 'f', -1, 64)
	v.Str = []byte(s)
	m.data[key] = v
	return resp.BulkStringValue(s)
}

// Del implements DEL: removes each key present, returning the count
// actually removed.
func (m *Map) Del(keys []string) resp.Value {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return resp.IntegerValue(n)
}

// Keys implements KEYS pattern, matching against the glob syntax *?[...].
func (m *Map) Keys(pattern string) resp.Value {
	finder := glob.New(pattern)
	items := make([]resp.Value, 0, len(m.data))
	for k := range m.data {
		if finder.Matches([]byte(k)) {
			items = append(items, resp.BulkStringValue(k))
		}
	}
	return resp.ArrayValue(items)
}

// Exists implements EXISTS: counts how many of keys are present, counting
// the same key twice if it is repeated in the argument list.
func (m *Map) Exists(keys []string) resp.Value {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			n++
		}
	}
	return resp.IntegerValue(n)
}
