package parser

import (
	"io"

	"golang.org/x/net/html/charset"
)

// NewUTF8Reader wraps an io.Reader with character encoding detection and conversion to UTF-8.
//
// The charset is taken from the Content-Type header when it declares one, then from a
// byte order mark. Bodies that are already valid UTF-8 pass through unchanged.
func NewUTF8Reader(body io.Reader, contentType string) (io.Reader, error) {
	return charset.NewReader(body, contentType)
}
