// Package resp implements the subset of the Redis Serialization Protocol
// (RESP2, https://redis.io/docs/reference/protocol-spec/) this server
// speaks: arrays of bulk strings as requests, and the five RESP2 reply
// types as responses.
//
// # Reading
//
// Requests are framed as "*<count>\r\n$<len>\r\n<bytes>\r\n..." — an Array
// of BulkStrings. Use Parser (see parser.go) to turn a byte stream into
// framed Commands with correct partial-input behavior.
//
// # Writing
//
// Use the Append* functions to serialize reply values to RESP2 bytes:
//
//	var out []byte
//	out = resp.AppendString(out, "OK")        // +OK\r\n
//	out = resp.AppendBulk(out, []byte("hi"))  // $2\r\nhi\r\n
//	out = resp.AppendInt(out, 42)             // :42\r\n
//	out = resp.AppendArray(out, 1)
//	out = resp.AppendBulk(out, []byte("x"))
package resp

import (
	"strconv"
	"strings"
)

// Type identifies a RESP2 value's leading byte.
type Type byte

// RESP2 type markers. Only these five appear on the wire.
const (
	Integer Type = ':'
	String  Type = '+'
	Bulk    Type = '$'
	Array   Type = '*'
	Error   Type = '-'
)

// Command is one parsed request: an array of bulk-string arguments.
// Args[0] is the command name.
type Command struct {
	// Raw is the exact encoded bytes this command was parsed from.
	Raw []byte
	// Args is the command name followed by its arguments.
	Args [][]byte
}

func appendPrefix(b []byte, c byte, n int64) []byte {
	if n >= 0 && n <= 9 {
		return append(b, c, byte('0'+n), '\r', '\n')
	}
	b = append(b, c)
	b = strconv.AppendInt(b, n, 10)
	return append(b, '\r', '\n')
}

// AppendInt appends a RESP2 integer reply: ":<n>\r\n".
func AppendInt(b []byte, n int64) []byte {
	return appendPrefix(b, ':', n)
}

// AppendArray appends a RESP2 array header: "*<n>\r\n". The caller must
// follow with exactly n encoded elements.
func AppendArray(b []byte, n int) []byte {
	return appendPrefix(b, '*', int64(n))
}

// AppendBulk appends a RESP2 bulk string: "$<len>\r\n<bulk>\r\n".
func AppendBulk(b []byte, bulk []byte) []byte {
	b = appendPrefix(b, '$', int64(len(bulk)))
	b = append(b, bulk...)
	return append(b, '\r', '\n')
}

// AppendBulkString is AppendBulk for a Go string.
func AppendBulkString(b []byte, s string) []byte {
	return AppendBulk(b, []byte(s))
}

// AppendString appends a RESP2 simple string: "+<s>\r\n". Any \r or \n in
// s is replaced with a space, since simple strings cannot contain them.
func AppendString(b []byte, s string) []byte {
	b = append(b, '+')
	b = append(b, stripNewlines(s)...)
	return append(b, '\r', '\n')
}

// AppendError appends a RESP2 error reply: "-<msg>\r\n". Callers are
// responsible for any "ERR " / "WRONGTYPE" style prefix.
func AppendError(b []byte, msg string) []byte {
	b = append(b, '-')
	b = append(b, stripNewlines(msg)...)
	return append(b, '\r', '\n')
}

// AppendOK appends the canonical "+OK\r\n" reply.
func AppendOK(b []byte) []byte {
	return append(b, '+', 'O', 'K', '\r', '\n')
}

// AppendNullBulkString appends a null bulk string: "$-1\r\n".
func AppendNullBulkString(b []byte) []byte {
	return append(b, '$', '-', '1', '\r', '\n')
}

// AppendNullArray appends a null array: "*-1\r\n".
func AppendNullArray(b []byte) []byte {
	return append(b, '*', '-', '1', '\r', '\n')
}

func stripNewlines(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\r' || s[i] == '\n' {
			s = strings.ReplaceAll(s, "\r", " ")
			s = strings.ReplaceAll(s, "\n", " ")
			break
		}
	}
	return s
}
