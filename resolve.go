package routelog

import (
	"fmt"
	"net/http"
	"reflect"
	"runtime"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

// HandlerInfo identifies the handler serving a request.
type HandlerInfo struct {
	Option

	// Method is the registered method, ANY for all.
	Method string
	// Pattern is the registered route pattern, like /api/users/:id.
	Pattern string
	// Params holds the path parameters matched by Pattern.
	Params httprouter.Params
}

// String returns the descriptor of the handler as it appears in records.
func (h *HandlerInfo) String() string {
	if h == nil || h.Pattern == "" {
		return "Noname"
	}

	if h.Name == "" {
		return h.Method + " " + h.Pattern
	}

	return h.Method + " " + h.Pattern + " (" + h.Name + ")"
}

// Resolver finds the handler that will serve a request without invoking it.
type Resolver interface {
	// Resolve returns nil when no handler is known for r.
	Resolve(r *http.Request) *HandlerInfo
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(r *http.Request) *HandlerInfo

// Resolve calls f(r).
func (f ResolverFunc) Resolve(r *http.Request) *HandlerInfo { return f(r) }

// AnyMethod means any HTTP method.
const AnyMethod = "ANY"

// nolint:gochecknoglobals
var (
	AllHTTPMethods = []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodConnect,
		http.MethodOptions,
		http.MethodTrace,
	}
)

// registry remembers the option of every route registered through the dispatcher.
// Lookups call the stored handle with a resolveWriter, never the real handler.
type registry struct {
	router   *httprouter.Router
	size     int
	patterns map[string]*Option
}

func newRegistry() *registry {
	r := httprouter.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.HandleMethodNotAllowed = false

	return &registry{router: r, patterns: make(map[string]*Option)}
}

type resolveWriter struct{ info *HandlerInfo }

func (resolveWriter) Header() http.Header       { return http.Header{} }
func (resolveWriter) Write([]byte) (int, error) { return 0, nil }
func (resolveWriter) WriteHeader(int)           {}

func (g *registry) register(method, pattern string, option *Option) {
	f := func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		if ww, ok := w.(*resolveWriter); ok {
			ww.info = &HandlerInfo{Option: *option, Method: method, Pattern: pattern, Params: p}
		}
	}

	g.patterns[patternKey(method, pattern)] = option
	path := routerPath(pattern)

	for _, m := range createMethods(method) {
		if err := g.handle(m, path, f); err != nil {
			logrus.Warnf("routelog: route %s %s is not resolvable: %v", m, pattern, err)
			continue
		}

		g.size++
	}
}

// option returns the option registered for the pattern, nil when unknown.
func (g *registry) option(method, pattern string) *Option {
	return g.patterns[patternKey(method, pattern)]
}

func patternKey(method, pattern string) string {
	if method == AnyMethod {
		return pattern
	}

	return method + " " + pattern
}

// handle turns the panic httprouter raises on conflicting routes into an error.
func (g *registry) handle(method, path string, f httprouter.Handle) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%v", v)
		}
	}()

	g.router.Handle(method, path, f)

	return nil
}

// routerPath rewrites http.ServeMux wildcards to the httprouter syntax,
// {id} to :id and {rest...} to *rest. A trailing {$} is dropped.
func routerPath(pattern string) string {
	if !strings.Contains(pattern, "{") {
		return pattern
	}

	segments := strings.Split(strings.TrimSuffix(pattern, "{$}"), "/")

	for i, seg := range segments {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}

		name := seg[1 : len(seg)-1]
		if strings.HasSuffix(name, "...") {
			segments[i] = "*" + strings.TrimSuffix(name, "...")
		} else {
			segments[i] = ":" + name
		}
	}

	return strings.Join(segments, "/")
}

func (g *registry) Resolve(r *http.Request) *HandlerInfo {
	if g.size == 0 {
		return nil
	}

	h, ps, _ := g.router.Lookup(r.Method, r.URL.Path)
	if h == nil {
		return nil
	}

	rw := &resolveWriter{}
	h(rw, r, ps)

	return rw.info
}

func createMethods(method string) []string {
	if method == AnyMethod {
		return AllHTTPMethods
	}

	return []string{method}
}

// splitPattern splits "GET /path" into method and path, ANY when no method is given.
func splitPattern(pattern string) (method, path string) {
	pattern = strings.TrimSpace(pattern)
	if strings.HasPrefix(pattern, "/") {
		return AnyMethod, pattern
	}

	pos := strings.Index(pattern, " ")
	if pos < 0 {
		return AnyMethod, pattern
	}

	return strings.ToUpper(pattern[:pos]), strings.TrimSpace(pattern[pos+1:])
}

// nameOfFunction returns the function name of a handler, like gin does for c.HandlerName().
func nameOfFunction(f interface{}) string {
	v := reflect.ValueOf(f)
	if v.Kind() != reflect.Func {
		return reflect.TypeOf(f).String()
	}

	if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
		return fn.Name()
	}

	return ""
}
