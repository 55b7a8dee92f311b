package glob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func match(pattern, input string) bool {
	return New(pattern).Matches([]byte(input))
}

func TestSimpleMatch(t *testing.T) {
	assert.True(t, match("a", "a"))
	assert.False(t, match("a", "b"))
	assert.False(t, match("a", "ab"))
	assert.False(t, match("ab", "a"))
	assert.False(t, match("ab", "b"))
	assert.True(t, match("ab", "ab"))
}

func TestStar(t *testing.T) {
	assert.True(t, match("*", "a"))
	assert.True(t, match("*", "b"))
	assert.True(t, match("*", "ab"))
	assert.True(t, match("a*", "a"))
	assert.False(t, match("a*", "b"))
	assert.True(t, match("a*", "ab"))
	assert.True(t, match("*a", "a"))
	assert.False(t, match("*a", "b"))
	assert.False(t, match("*a", "ab"))
	assert.True(t, match("*a*", "a"))
	assert.False(t, match("*a*", "b"))
	assert.True(t, match("*a*", "ab"))
}

func TestEscape(t *testing.T) {
	assert.True(t, match(`a\*`, "a*"))
	assert.False(t, match(`a\*`, "abc"))
}

func TestQuestion(t *testing.T) {
	assert.True(t, match("?", "a"))
	assert.False(t, match("?", "ab"))
	assert.False(t, match("?", ""))
	assert.True(t, match("a?c", "abc"))
	assert.False(t, match("a?c", "ac"))
}

func TestBracketClass(t *testing.T) {
	assert.True(t, match("[abc]", "a"))
	assert.True(t, match("[abc]", "b"))
	assert.False(t, match("[abc]", "d"))
	assert.True(t, match("[^abc]", "d"))
	assert.False(t, match("[^abc]", "a"))
	assert.True(t, match("[a-c]", "b"))
	assert.False(t, match("[a-c]", "d"))
	assert.True(t, match("[c-a]", "b"))
}

func TestEmptyBracketMatchesNothing(t *testing.T) {
	assert.False(t, match("[]", "anything"))
	assert.False(t, match("[]", ""))
}

func TestCaretOnlyBracketActsAsQuestion(t *testing.T) {
	assert.True(t, match("[^]", "a"))
	assert.False(t, match("[^]", "ab"))
}

func TestKeysStylePattern(t *testing.T) {
	assert.True(t, match("user:*", "user:1"))
	assert.True(t, match("user:*", "user:"))
	assert.False(t, match("user:*", "account:1"))
	assert.True(t, match("user:?", "user:1"))
	assert.False(t, match("user:?", "user:12"))
}

func TestQuestionStarMixIsLengthAtLeast(t *testing.T) {
	// All nodes are Question/Star with at least one Star: length must be
	// >= the number of Questions, not exactly equal (spec.md §4.6).
	assert.True(t, match("?*", "a"))
	assert.True(t, match("?*", "abc"))
	assert.False(t, match("?*", ""))
	assert.True(t, match("*?", "a"))
	assert.True(t, match("*?", "abc"))
	assert.True(t, match("?*?", "ab"))
	assert.True(t, match("?*?", "abcd"))
	assert.False(t, match("?*?", "a"))
}

func TestAllQuestionNoStarIsExactLength(t *testing.T) {
	// No Star present: length must match exactly.
	assert.True(t, match("??", "ab"))
	assert.False(t, match("??", "abc"))
	assert.False(t, match("??", "a"))
}

func TestMixedLiteralAndWildcard(t *testing.T) {
	assert.True(t, match("a*bc", "a123bc"))
	assert.True(t, match("a*bc", "abc"))
	assert.False(t, match("a*bc", "a123bd"))
}
