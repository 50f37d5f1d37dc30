package routelog

import (
	"net/http"
)

// ServeMuxResolver identifies handlers of a http.ServeMux by the pattern the
// mux picks for a request, so subtree patterns like "/api/" resolve too.
type ServeMuxResolver struct {
	Mux *http.ServeMux

	options func(method, pattern string) *Option
}

// Resolve asks the mux for its pattern without serving r.
func (s ServeMuxResolver) Resolve(r *http.Request) *HandlerInfo {
	_, pattern := s.Mux.Handler(r)
	if pattern == "" {
		return nil
	}

	method, path := splitPattern(pattern)
	info := &HandlerInfo{Method: method, Pattern: path}

	if s.options != nil {
		if o := s.options(method, path); o != nil {
			info.Option = *o
		}
	}

	return info
}
