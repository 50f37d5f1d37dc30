package routelog

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
)

// Content is a captured body that can be read again after the handler is done with it.
type Content interface {
	// ContentAsBytes returns the captured bytes. The slice must not be modified.
	ContentAsBytes() []byte
	// CharacterEncoding returns the declared charset of the body.
	CharacterEncoding() string
}

// RequestContent is a request body that keeps a copy of what the handler read.
type RequestContent interface {
	io.ReadCloser
	Content
}

// ResponseContent is a response writer that holds the body back until it is copied out.
type ResponseContent interface {
	http.ResponseWriter
	Content

	// CopyBodyToResponse writes the status and the buffered body to the real writer.
	CopyBodyToResponse() error
}

var (
	_ RequestContent  = (*CachingBody)(nil)
	_ ResponseContent = (*CachingResponseWriter)(nil)
	_ http.Flusher    = (*CachingResponseWriter)(nil)
)

// CachingBody mirrors every byte read from the request body into a buffer.
type CachingBody struct {
	body    io.ReadCloser
	content bytes.Buffer
	charset string
}

// Read reads from the underlying body and keeps a copy of what was read.
func (b *CachingBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if n > 0 {
		b.content.Write(p[:n])
	}

	return n, err
}

// Close closes the underlying body.
func (b *CachingBody) Close() error { return b.body.Close() }

// ContentAsBytes returns the bytes read so far.
func (b *CachingBody) ContentAsBytes() []byte { return b.content.Bytes() }

// CharacterEncoding returns the charset of the request Content-Type.
func (b *CachingBody) CharacterEncoding() string { return b.charset }

// WrapRequest replaces r.Body with a CachingBody, reusing one already in place.
func WrapRequest(r *http.Request) *CachingBody {
	if cb, ok := r.Body.(*CachingBody); ok {
		return cb
	}

	body := r.Body
	if body == nil {
		body = http.NoBody
	}

	cb := &CachingBody{body: body, charset: CharsetOf(r.Header.Get("Content-Type"))}
	r.Body = cb

	return cb
}

// CachingResponseWriter buffers the status and body written by a handler.
// Headers go straight to the real writer.
type CachingResponseWriter struct {
	w         http.ResponseWriter
	content   bytes.Buffer
	status    int
	committed bool
}

// WrapResponse wraps w, reusing a CachingResponseWriter found in w's wrapper chain.
func WrapResponse(w http.ResponseWriter) *CachingResponseWriter {
	if cw := NativeResponse(w); cw != nil {
		return cw
	}

	return &CachingResponseWriter{w: w}
}

// Header returns the header map of the real writer.
func (c *CachingResponseWriter) Header() http.Header { return c.w.Header() }

// WriteHeader records the first status code.
func (c *CachingResponseWriter) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
}

// Write buffers p.
func (c *CachingResponseWriter) Write(p []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}

	return c.content.Write(p)
}

// WriteString buffers s.
func (c *CachingResponseWriter) WriteString(s string) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}

	return c.content.WriteString(s)
}

// Flush keeps the body held back, it reaches the client on CopyBodyToResponse.
func (c *CachingResponseWriter) Flush() {}

// CloseNotify forwards to the real writer, gin's c.Stream asks for it unchecked.
// nolint:staticcheck
func (c *CachingResponseWriter) CloseNotify() <-chan bool {
	if cn, ok := c.w.(http.CloseNotifier); ok {
		return cn.CloseNotify()
	}

	return make(chan bool)
}

// Status returns the recorded status code, 200 when none was written.
func (c *CachingResponseWriter) Status() int {
	if c.status == 0 {
		return http.StatusOK
	}

	return c.status
}

// ContentAsBytes returns the buffered body that has not been copied out yet.
func (c *CachingResponseWriter) ContentAsBytes() []byte { return c.content.Bytes() }

// ContentSize returns the number of buffered bytes.
func (c *CachingResponseWriter) ContentSize() int { return c.content.Len() }

// CharacterEncoding returns the charset of the response Content-Type.
func (c *CachingResponseWriter) CharacterEncoding() string {
	return CharsetOf(c.w.Header().Get("Content-Type"))
}

// CopyBodyToResponse sends the status once and drains the buffer into the real writer.
func (c *CachingResponseWriter) CopyBodyToResponse() error {
	if !c.committed {
		h := c.w.Header()
		if n := c.content.Len(); n > 0 && h.Get("Content-Length") == "" && h.Get("Transfer-Encoding") == "" {
			h.Set("Content-Length", strconv.Itoa(n))
		}

		c.w.WriteHeader(c.Status())
		c.committed = true
	}

	if c.content.Len() == 0 {
		return nil
	}

	_, err := c.content.WriteTo(c.w)

	return err
}

// errNoCachingResponse is raised when replay finds no capture writer.
var errNoCachingResponse = errors.New("routelog: response writer is not wrapped by CachingResponseWriter")

// NativeResponse finds the CachingResponseWriter in w's Unwrap chain, or returns nil.
func NativeResponse(w http.ResponseWriter) *CachingResponseWriter {
	for w != nil {
		switch v := w.(type) {
		case *CachingResponseWriter:
			return v
		case interface{ Unwrap() http.ResponseWriter }:
			w = v.Unwrap()
		default:
			return nil
		}
	}

	return nil
}

func copyBodyToResponse(w http.ResponseWriter) error {
	cw := NativeResponse(w)
	if cw == nil {
		panic(errNoCachingResponse)
	}

	return cw.CopyBodyToResponse()
}
