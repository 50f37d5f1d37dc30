package routelog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/julienschmidt/httprouter"
)

// ChiResolver identifies handlers of a chi router by their route pattern.
type ChiResolver struct {
	Routes chi.Routes
}

// Resolve matches r against the router without running any handler or middleware.
func (c ChiResolver) Resolve(r *http.Request) *HandlerInfo {
	rctx := chi.NewRouteContext()

	path := r.URL.RawPath
	if path == "" {
		path = r.URL.Path
	}

	if !c.Routes.Match(rctx, r.Method, path) {
		return nil
	}

	pattern := rctx.RoutePattern()
	if pattern == "" {
		return nil
	}

	return &HandlerInfo{
		Method:  r.Method,
		Pattern: pattern,
		Params:  chiParams(rctx),
	}
}

func chiParams(rctx *chi.Context) httprouter.Params {
	ps := make(httprouter.Params, 0, len(rctx.URLParams.Keys))

	for i, k := range rctx.URLParams.Keys {
		ps = append(ps, httprouter.Param{Key: k, Value: rctx.URLParams.Values[i]})
	}

	return ps
}

func defaultResolver(handler http.Handler, g *registry) Resolver {
	switch v := handler.(type) {
	case chi.Routes:
		return ChiResolver{Routes: v}
	case *http.ServeMux:
		return ServeMuxResolver{Mux: v, options: g.option}
	}

	return nil
}
