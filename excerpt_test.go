package routelog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcerpt(t *testing.T) {
	assert.Nil(t, Excerpt(nil, "utf-8"))
	assert.Nil(t, Excerpt([]byte{}, "utf-8"))

	s := Excerpt([]byte("hello"), "")
	if assert.NotNil(t, s) {
		assert.Equal(t, "hello", *s)
	}

	long := bytes.Repeat([]byte("a"), MaxExcerptSize+1)
	s = Excerpt(long, "utf-8")

	if assert.NotNil(t, s) {
		assert.Len(t, *s, MaxExcerptSize)
	}

	exact := bytes.Repeat([]byte("b"), MaxExcerptSize)
	s = Excerpt(exact, "utf-8")

	if assert.NotNil(t, s) {
		assert.Len(t, *s, MaxExcerptSize)
	}
}

func TestExcerptCharsets(t *testing.T) {
	s := Excerpt([]byte{0xc4, 0xe3, 0xba, 0xc3}, "GBK")
	if assert.NotNil(t, s) {
		assert.Equal(t, "你好", *s)
	}

	s = Excerpt([]byte{'c', 'a', 'f', 0xe9}, "iso-8859-1")
	if assert.NotNil(t, s) {
		assert.Equal(t, "café", *s)
	}

	assert.Nil(t, Excerpt([]byte("hello"), "no-such-charset"))
}

func TestCharsetOf(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"", DefaultCharset},
		{"application/json", DefaultCharset},
		{"text/html; charset=GBK", "GBK"},
		{`text/plain; charset="ISO-8859-1"`, "ISO-8859-1"},
		{"text/plain; charset=", DefaultCharset},
		{";;;", DefaultCharset},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, CharsetOf(tc.contentType), tc.contentType)
	}
}
