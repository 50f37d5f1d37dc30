package routelog

import (
	"net/http"
	"path"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
)

// NewGin wraps a gin engine with a Dispatcher logging routesToLog.
// Serve the returned GinRouter instead of the engine.
func NewGin(engine *gin.Engine, routesToLog []string, fns ...ConfigFn) *GinRouter {
	return newGinRouter(engine, New(engine, routesToLog, fns...), "/")
}

func newGinRouter(router gin.IRouter, d *Dispatcher, basePath string) *GinRouter {
	r := &GinRouter{IRouter: router, Dispatcher: d, basePath: basePath}
	fn := func(method string) RouterFn {
		return func(relativePath string, handler gin.HandlerFunc, options ...OptionFn) *GinRouter {
			return r.Handle(method, relativePath, handler, options...)
		}
	}

	r.POST = fn(http.MethodPost)
	r.GET = fn(http.MethodGet)
	r.DELETE = fn(http.MethodDelete)
	r.PATCH = fn(http.MethodPatch)
	r.PUT = fn(http.MethodPut)
	r.OPTIONS = fn(http.MethodOptions)
	r.HEAD = fn(http.MethodHead)

	return r
}

// RouterFn defines the prototype for function gin Handle.
type RouterFn func(relativePath string, handler gin.HandlerFunc, options ...OptionFn) *GinRouter

// GinRouter registers gin routes together with their logging options.
type GinRouter struct {
	gin.IRouter
	*Dispatcher

	basePath string

	// XXX is a shortcut for router.Handle("XXX", path, handle).
	POST, GET, DELETE, PATCH, PUT, OPTIONS, HEAD RouterFn
}

// ServeHTTP serves the request through the Dispatcher.
func (r *GinRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Dispatcher.ServeHTTP(w, req)
}

// Group creates a router group sharing the Dispatcher.
func (r *GinRouter) Group(relativePath string, handlers ...gin.HandlerFunc) *GinRouter {
	return newGinRouter(r.IRouter.Group(relativePath, handlers...), r.Dispatcher, joinPaths(r.basePath, relativePath))
}

// Use adds middleware to the group.
func (r *GinRouter) Use(middleware ...gin.HandlerFunc) *GinRouter {
	r.IRouter.Use(middleware...)
	return r
}

// Handle registers a new request handle with the given path and method.
// The handler name defaults to the name of the handler function.
func (r *GinRouter) Handle(httpMethod, relativePath string, handler gin.HandlerFunc, options ...OptionFn) *GinRouter {
	r.IRouter.Handle(httpMethod, relativePath, handler)
	r.Register(httpMethod+" "+joinPaths(r.basePath, relativePath), nameOfFunction(handler), options...)

	return r
}

// Any registers a route that matches all the HTTP methods.
// GET, POST, PUT, PATCH, HEAD, OPTIONS, DELETE, CONNECT, TRACE.
func (r *GinRouter) Any(relativePath string, handler gin.HandlerFunc, options ...OptionFn) *GinRouter {
	r.IRouter.Any(relativePath, handler)
	r.Register(joinPaths(r.basePath, relativePath), nameOfFunction(handler), options...)

	return r
}

// nolint:gochecknoglobals
var (
	ginHandlerFuncType = reflect.TypeOf((*gin.HandlerFunc)(nil)).Elem()
)

// RegisterCtler registers a controller object which declares the router in the structure fields' tag,
// like `route:"POST /users" name:"create user" ignore:"true"`.
func (r *GinRouter) RegisterCtler(ctler interface{}) {
	v := reflect.Indirect(reflect.ValueOf(ctler))
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		fi := t.Field(i)
		f := v.Field(i)
		route := fi.Tag.Get("route")

		if route == "" || !fi.Type.AssignableTo(ginHandlerFuncType) || f.IsNil() {
			continue
		}

		method, relativePath := splitPattern(route)
		if !strings.Contains(route, " ") {
			method = http.MethodGet
		}

		fn := f.Interface().(gin.HandlerFunc)
		name := fi.Tag.Get("name")

		if name == "" {
			name = t.Name() + "." + fi.Name
		}

		options := []OptionFn{Name(name), Ignore(fi.Tag.Get("ignore") == "true")}

		if method == AnyMethod {
			r.Any(relativePath, fn, options...)
		} else {
			r.Handle(method, relativePath, fn, options...)
		}
	}
}

func joinPaths(absolutePath, relativePath string) string {
	if relativePath == "" {
		return absolutePath
	}

	finalPath := path.Join(absolutePath, relativePath)
	if strings.HasSuffix(relativePath, "/") && !strings.HasSuffix(finalPath, "/") {
		return finalPath + "/"
	}

	return finalPath
}
