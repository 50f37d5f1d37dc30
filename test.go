package routelog

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// RequestVars defines the structure of request vars tha can be set.
type RequestVars struct {
	Body        io.Reader
	ContentType string
	Header      http.Header
	RemoteAddr  string
}

// RequestVarsFn defines the prototype of RequestVars option setting function.
type RequestVarsFn func(r *RequestVars)

// RequestVarsFns is the slice of RequestVarsFn.
type RequestVarsFns []RequestVarsFn

// Create creates new RequestVars.
func (fns RequestVarsFns) Create() *RequestVars {
	vars := &RequestVars{Header: make(http.Header)}

	for _, fn := range fns {
		fn(vars)
	}

	return vars
}

// JSONVar creates a new JSON RequestVarsFn.
func JSONVar(obj interface{}) RequestVarsFn {
	return func(r *RequestVars) {
		if s, ok := obj.(string); ok {
			r.Body = strings.NewReader(s)
		} else {
			b, _ := JSONMarshal(obj)
			r.Body = bytes.NewReader(b)
		}

		r.ContentType = "application/json; charset=utf-8"
	}
}

// FormVar creates a new url encoded form RequestVarsFn.
func FormVar(values url.Values) RequestVarsFn {
	return func(r *RequestVars) {
		r.Body = strings.NewReader(values.Encode())
		r.ContentType = "application/x-www-form-urlencoded"
	}
}

// BodyVar sets a raw body with its content type.
func BodyVar(body []byte, contentType string) RequestVarsFn {
	return func(r *RequestVars) {
		r.Body = bytes.NewReader(body)
		r.ContentType = contentType
	}
}

// HeaderVar sets a request header.
func HeaderVar(key, value string) RequestVarsFn {
	return func(r *RequestVars) { r.Header.Set(key, value) }
}

// RemoteAddrVar sets the remote address of the request.
func RemoteAddrVar(addr string) RequestVarsFn {
	return func(r *RequestVars) { r.RemoteAddr = addr }
}

// PerformRequest performs a test request.
// from https://github.com/gin-gonic/gin/issues/1120.
func PerformRequest(method, target string, fn http.Handler, fns ...RequestVarsFn) *httptest.ResponseRecorder {
	vars := (RequestVarsFns(fns)).Create()

	r := httptest.NewRequest(method, target, vars.Body)

	for k, v := range vars.Header {
		r.Header[k] = v
	}

	if vars.ContentType != "" {
		r.Header.Set("Content-Type", vars.ContentType)
	}

	if vars.RemoteAddr != "" {
		r.RemoteAddr = vars.RemoteAddr
	}

	w := httptest.NewRecorder()
	fn.ServeHTTP(w, r)

	return w
}
