package resp

import (
	"bytes"
	"errors"
)

// Parser turns a byte stream into framed Commands. It is a streaming,
// single-writer decoder: feed it bytes as they arrive off the wire and call
// Next repeatedly to drain whatever complete requests are buffered.
//
// Only the RESP2 request shape this server accepts is recognized: a
// top-level Array of BulkStrings. Anything else is a protocol error.
type Parser struct {
	buf bytes.Buffer
}

// NewParser returns an empty Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends newly read bytes to the parser's internal buffer.
func (p *Parser) Feed(data []byte) {
	p.buf.Write(data)
}

// Buffered reports how many unconsumed bytes are currently retained.
func (p *Parser) Buffered() int {
	return p.buf.Len()
}

// Next attempts to extract exactly one complete request from the buffered
// bytes.
//
//   - (nil, nil): no complete request is available yet; all buffered bytes
//     are retained for the next call once more data is fed.
//   - (cmd, nil): one full request was framed and consumed.
//   - (nil, err): the buffered bytes are malformed RESP2. Everything buffered
//     is discarded, so parsing starts afresh with the next bytes fed. The
//     caller must stop draining the current batch and report err to its
//     peer.
func (p *Parser) Next() (*Command, error) {
	consumed, cmd, err := parseRequest(p.buf.Bytes())
	if err != nil {
		p.buf.Reset()
		return nil, err
	}
	if consumed == 0 {
		return nil, nil
	}
	p.buf.Next(consumed)
	return cmd, nil
}

var (
	errOnlyRESP2          = errors.New("invalid data type: expected '*' array")
	errNestedArray        = errors.New("invalid data type: nested arrays are not supported")
	errElementNotBulk     = errors.New("invalid data type: array elements must be bulk strings")
	errInvalidLengthChar  = errors.New("invalid character in length")
	errNegativeLength     = errors.New("negative length")
	errUnexpectedNullArr  = errors.New("unexpected null array where a value is required")
	errUnexpectedNullBulk = errors.New("unexpected null bulk string where a value is required")
	errMissingCRLF        = errors.New("missing CRLF terminator")
)

// findLine locates the "\r\n" terminator of the line starting at pos and
// returns the index just past it. ok is false when the buffer simply doesn't
// contain a terminator yet (more data may still arrive). err is non-nil when
// a bare '\n' is found without a preceding '\r' — that is malformed on the
// wire no matter how much more data arrives.
func findLine(b []byte, pos int) (end int, ok bool, err error) {
	for i := pos; i < len(b); i++ {
		if b[i] == '\n' {
			if i == pos || b[i-1] != '\r' {
				return 0, false, errMissingCRLF
			}
			return i + 1, true, nil
		}
	}
	return 0, false, nil
}

// parseSignedInt parses a base-10, optionally '-'-prefixed integer from s.
// It rejects anything but digits and a leading sign — no whitespace, no
// leading zeros tolerance beyond what strconv would already accept is
// required here, since RESP lengths are never padded in practice and the
// spec only asks that non-digit characters be rejected.
func parseSignedInt(s []byte) (int64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
		if len(s) == 1 {
			return 0, false
		}
	}
	var n int64
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int64(c-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

// parseRequest attempts to decode one top-level request from b. consumed is
// the number of leading bytes of b that made up the request; it is 0 when
// more data is needed. err is non-nil for malformed input, in which case
// consumed and cmd are meaningless.
func parseRequest(b []byte) (consumed int, cmd *Command, err error) {
	if len(b) == 0 {
		return 0, nil, nil
	}
	if b[0] != byte(Array) {
		return 0, nil, errOnlyRESP2
	}

	headerEnd, ok, lerr := findLine(b, 1)
	if lerr != nil {
		return 0, nil, lerr
	}
	if !ok {
		return 0, nil, nil
	}
	count, ok := parseSignedInt(b[1 : headerEnd-2])
	if !ok {
		return 0, nil, errInvalidLengthChar
	}
	if count < -1 {
		return 0, nil, errNegativeLength
	}
	if count == -1 {
		return 0, nil, errUnexpectedNullArr
	}

	pos := headerEnd
	args := make([][]byte, 0, count)
	for i := int64(0); i < count; i++ {
		if pos >= len(b) {
			return 0, nil, nil
		}
		switch b[pos] {
		case byte(Bulk):
			// expected
		case byte(Array):
			return 0, nil, errNestedArray
		default:
			return 0, nil, errElementNotBulk
		}

		lenEnd, ok, lerr := findLine(b, pos+1)
		if lerr != nil {
			return 0, nil, lerr
		}
		if !ok {
			return 0, nil, nil
		}
		blen, ok := parseSignedInt(b[pos+1 : lenEnd-2])
		if !ok {
			return 0, nil, errInvalidLengthChar
		}
		if blen < -1 {
			return 0, nil, errNegativeLength
		}
		if blen == -1 {
			return 0, nil, errUnexpectedNullBulk
		}

		dataStart := lenEnd
		dataEnd := dataStart + int(blen)
		if dataEnd+2 > len(b) {
			return 0, nil, nil
		}
		if b[dataEnd] != '\r' || b[dataEnd+1] != '\n' {
			return 0, nil, errMissingCRLF
		}
		args = append(args, b[dataStart:dataEnd])
		pos = dataEnd + 2
	}

	raw := make([]byte, pos)
	copy(raw, b[:pos])

	out := make([][]byte, len(args))
	for i, a := range args {
		cp := make([]byte, len(a))
		copy(cp, a)
		out[i] = cp
	}
	return pos, &Command{Raw: raw, Args: out}, nil
}
