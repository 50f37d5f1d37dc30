package routelog

import (
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// MaxExcerptSize is the most bytes of a captured body that make it into a log record.
const MaxExcerptSize = 5120

// DefaultCharset is assumed when a body declares no charset.
const DefaultCharset = "utf-8"

// Excerpt decodes at most MaxExcerptSize bytes of buf using charset.
// It returns nil when buf is empty or cannot be decoded.
func Excerpt(buf []byte, charset string) *string {
	if len(buf) == 0 {
		return nil
	}

	if len(buf) > MaxExcerptSize {
		buf = buf[:MaxExcerptSize]
	}

	s, err := decode(buf, charset)
	if err != nil {
		return nil
	}

	return &s
}

func decode(buf []byte, charset string) (string, error) {
	if charset == "" {
		charset = DefaultCharset
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", err
	}

	out, err := enc.NewDecoder().Bytes(buf)
	if err != nil {
		return "", err
	}

	return string(out), nil
}

// CharsetOf returns the charset parameter of a Content-Type value, or DefaultCharset.
func CharsetOf(contentType string) string {
	if contentType == "" {
		return DefaultCharset
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return DefaultCharset
	}

	if cs := strings.TrimSpace(params["charset"]); cs != "" {
		return cs
	}

	return DefaultCharset
}
