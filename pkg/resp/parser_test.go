package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserSingleCommand(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"))

	cmd, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, cmd)
	assert.Equal(t, [][]byte{[]byte("GET"), []byte("foo")}, cmd.Args)
	assert.Equal(t, 0, p.Buffered())

	cmd, err = p.Next()
	require.NoError(t, err)
	assert.Nil(t, cmd)
}

func TestParserPipelinedCommands(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("*1\r\n$4\r\nPING\r\n*1\r\n$4\r\nPING\r\n"))

	cmd, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("PING")}, cmd.Args)

	cmd, err = p.Next()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("PING")}, cmd.Args)

	cmd, err = p.Next()
	require.NoError(t, err)
	assert.Nil(t, cmd)
}

// TestParserPartialFrame exercises invariant 8: a request whose bytes have
// not all arrived yet must not be consumed and must not produce an error.
func TestParserPartialFrame(t *testing.T) {
	p := NewParser()

	fragments := [][]byte{
		[]byte("*2\r\n"),
		[]byte("$3\r\nSET\r\n"),
		[]byte("$1\r\n"),
		[]byte("a"),
		[]byte("\r\n"),
	}

	var cmd *Command
	for _, f := range fragments {
		p.Feed(f)
		c, err := p.Next()
		require.NoError(t, err)
		if c != nil {
			cmd = c
			break
		}
	}

	require.NotNil(t, cmd)
	assert.Equal(t, [][]byte{[]byte("SET"), []byte("a")}, cmd.Args)
}

func TestParserPartialBulkBodyNotConsumed(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("*1\r\n$5\r\nhel"))

	cmd, err := p.Next()
	require.NoError(t, err)
	assert.Nil(t, cmd)
	assert.Equal(t, 11, p.Buffered())

	p.Feed([]byte("lo\r\n"))
	cmd, err = p.Next()
	require.NoError(t, err)
	require.NotNil(t, cmd)
	assert.Equal(t, [][]byte{[]byte("hello")}, cmd.Args)
}

func TestParserRejectsNonArrayTopLevel(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("+PING\r\n"))

	cmd, err := p.Next()
	assert.Nil(t, cmd)
	assert.ErrorIs(t, err, errOnlyRESP2)
}

func TestParserRejectsNestedArray(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("*1\r\n*1\r\n$3\r\nfoo\r\n"))

	cmd, err := p.Next()
	assert.Nil(t, cmd)
	assert.ErrorIs(t, err, errNestedArray)
}

func TestParserRejectsNonBulkElement(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("*1\r\n:5\r\n"))

	cmd, err := p.Next()
	assert.Nil(t, cmd)
	assert.ErrorIs(t, err, errElementNotBulk)
}

func TestParserRejectsInvalidLengthChar(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("*x\r\n"))

	cmd, err := p.Next()
	assert.Nil(t, cmd)
	assert.ErrorIs(t, err, errInvalidLengthChar)
}

func TestParserRejectsNegativeLength(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("*1\r\n$-5\r\nabc\r\n"))

	cmd, err := p.Next()
	assert.Nil(t, cmd)
	assert.ErrorIs(t, err, errNegativeLength)
}

func TestParserRejectsNullArray(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("*-1\r\n"))

	cmd, err := p.Next()
	assert.Nil(t, cmd)
	assert.ErrorIs(t, err, errUnexpectedNullArr)
}

func TestParserRejectsNullBulkElement(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("*1\r\n$-1\r\n"))

	cmd, err := p.Next()
	assert.Nil(t, cmd)
	assert.ErrorIs(t, err, errUnexpectedNullBulk)
}

func TestParserRejectsMissingCRLF(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("*1\r\n$3\r\nfoo\n\n"))

	cmd, err := p.Next()
	assert.Nil(t, cmd)
	assert.ErrorIs(t, err, errMissingCRLF)
}

func TestParserRejectsBareLFInHeader(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("*1\n"))

	cmd, err := p.Next()
	assert.Nil(t, cmd)
	assert.ErrorIs(t, err, errMissingCRLF)
}

func TestParserEmptyArray(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("*0\r\n"))

	cmd, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, cmd)
	assert.Empty(t, cmd.Args)
}

func TestParserRawCapturesExactBytes(t *testing.T) {
	p := NewParser()
	raw := "*1\r\n$4\r\nPING\r\n"
	p.Feed([]byte(raw))

	cmd, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte(raw), cmd.Raw)
}
