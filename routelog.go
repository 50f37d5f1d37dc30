// Package routelog logs request and response bodies of the configured routes.
//
// A Dispatcher sits in front of the real handler. Requests whose path matches
// one of the routes to log get their body and response captured, one Record is
// stored after the handler is done, and the captured response is then copied to
// the client unchanged. Other requests pass through untouched.
package routelog

import (
	"net/http"
	"net/url"
	"time"

	"github.com/bingoohuang/snow"
	"github.com/sirupsen/logrus"
)

// Dispatcher wraps a http.Handler and logs the requests of the configured routes.
type Dispatcher struct {
	handler  http.Handler
	routes   Routes
	store    Store
	registry *registry
	resolver Resolver
}

// New returns a Dispatcher for handler. routesToLog lists routes like "/api/";
// when it is empty nothing is logged.
func New(handler http.Handler, routesToLog []string, fns ...ConfigFn) *Dispatcher {
	c := createConfig(fns)
	reg := newRegistry()

	resolver := c.Resolver
	if resolver == nil {
		resolver = defaultResolver(handler, reg)
	}

	return &Dispatcher{
		handler:  handler,
		routes:   NewRoutes(c.Mode, routesToLog...),
		store:    c.Store,
		registry: reg,
		resolver: resolver,
	}
}

// Routes returns the routes to log.
func (d *Dispatcher) Routes() Routes { return d.routes }

// ServeHTTP dispatches r, with logging when its path matches the routes to log.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !d.routes.Match(r.URL.EscapedPath()) {
		d.handler.ServeHTTP(w, r)
		return
	}

	d.serveWithLogging(w, r)
}

func (d *Dispatcher) serveWithLogging(w http.ResponseWriter, r *http.Request) {
	info := d.resolve(r)

	if skipLogging(r, info) {
		d.handler.ServeHTTP(w, r)
		return
	}

	body := WrapRequest(r)
	rsp := WrapResponse(w)

	l := newRecord(r, info)
	newCtx, ctxVar := createCtx(r, l)
	r = r.WithContext(newCtx)
	m := &Metrics{}

	defer func() {
		l.fill(r, body, rsp, m)
		l.Attrs = ctxVar.Attrs
		d.store.Store(l)

		if err := copyBodyToResponse(rsp); err != nil {
			logrus.Debugf("routelog: copy body to response for %s %s: %v", l.Method, l.URI, err)
		}
	}()

	CaptureMetricsFn(m, rsp, func(ww http.ResponseWriter) { d.handler.ServeHTTP(ww, r) })
}

func (d *Dispatcher) resolve(r *http.Request) *HandlerInfo {
	if info := d.registry.Resolve(r); info != nil {
		return info
	}

	if d.resolver != nil {
		return d.resolver.Resolve(r)
	}

	return nil
}

// HandlerFuncAware declares interface which holds the HandleFunc function.
type HandlerFuncAware interface {
	// HandleFunc registers the handler function for the given pattern.
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
}

// HandlerAware declares interface which holds the Handle function.
type HandlerAware interface {
	// Handle registers the handler for the given pattern.
	Handle(pattern string, handler http.Handler)
}

// HandleFunc registers the handler function for the given pattern on the wrapped
// handler, when it accepts registrations, and remembers the options of the route.
// The pattern may start with a method, like "POST /api/users".
func (d *Dispatcher) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request), options ...OptionFn) {
	if v, ok := d.handler.(HandlerFuncAware); ok {
		v.HandleFunc(pattern, handler)
	}

	d.Register(pattern, nameOfFunction(handler), options...)
}

// Handle registers the handler for the given pattern, like HandleFunc.
func (d *Dispatcher) Handle(pattern string, handler http.Handler, options ...OptionFn) {
	if v, ok := d.handler.(HandlerAware); ok {
		v.Handle(pattern, handler)
	}

	d.Register(pattern, nameOfFunction(handler), options...)
}

// Register remembers the options of a route served by the wrapped handler.
// defaultName is used when the options carry no Name.
func (d *Dispatcher) Register(pattern, defaultName string, options ...OptionFn) {
	option := OptionFns(options).CreateOption()
	if option.Name == "" {
		option.Name = defaultName
	}

	method, path := splitPattern(pattern)
	d.registry.register(method, path, option)
}

func newRecord(r *http.Request, info *HandlerInfo) *Record {
	return &Record{
		ID:          snow.Next().String(),
		Created:     time.Now(),
		Method:      r.Method,
		URI:         r.URL.EscapedPath(),
		RemoteAddr:  IPAddrFromRemoteAddr(r.RemoteAddr),
		ClientIP:    GetRemoteAddress(r),
		Handler:     info.String(),
		HandlerInfo: info,
		ReqHeader:   r.Header,
		request:     r,
	}
}

// fill copies what the handler left behind into l, without draining any buffer.
func (l *Record) fill(r *http.Request, body *CachingBody, rsp *CachingResponseWriter, m *Metrics) {
	l.request = r
	l.Params = requestParams(r)
	l.Status = m.Code
	l.Start = m.Start
	l.End = m.End
	l.Duration = m.Duration
	l.RspSize = m.Written
	l.Panicked = !m.Completed
	l.RspHeader = rsp.Header()
	l.ReqBody = Excerpt(body.ContentAsBytes(), body.CharacterEncoding())
	l.RspBody = Excerpt(rsp.ContentAsBytes(), rsp.CharacterEncoding())
}

// requestParams never parses the form itself, that would read the rest of the body.
func requestParams(r *http.Request) url.Values {
	if r.Form != nil {
		return cloneValues(r.Form)
	}

	return r.URL.Query()
}

func cloneValues(v url.Values) url.Values {
	cp := make(url.Values, len(v))
	for k, vs := range v {
		cp[k] = append([]string(nil), vs...)
	}

	return cp
}
