package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobMatch(t *testing.T) {
	cases := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"*", "anything", true},
		{"*", "", true},
		{"h?llo", "hello", true},
		{"h?llo", "hllo", false},
		{"h[ae]llo", "hello", true},
		{"h[ae]llo", "hillo", false},
		{"h[^ae]llo", "hillo", true},
		{"h[a-c]llo", "hbllo", true},
		{"h[a-c]llo", "hzllo", false},
		{"foo*", "foobar", true},
		{"foo*", "fo", false},
		{"*bar", "foobar", true},
		{"f\\*o", "f*o", true},
		{"f\\*o", "fxo", false},
		{"abc", "abc", true},
		{"abc", "abd", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, GlobMatch(c.pattern, c.input), "pattern %q vs %q", c.pattern, c.input)
	}
}

func TestTailWildcardPrefix(t *testing.T) {
	literal, ok := tailWildcardPrefix("abc*")
	assert.True(t, ok)
	assert.Equal(t, "abc", literal)

	_, ok = tailWildcardPrefix("a*c")
	assert.False(t, ok)

	_, ok = tailWildcardPrefix("abc")
	assert.False(t, ok)

	_, ok = tailWildcardPrefix("a?c*")
	assert.False(t, ok)
}
