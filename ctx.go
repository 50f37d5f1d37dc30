package routelog

import (
	"context"
	"net/http"
)

// ContextKey defines the context key type.
type ContextKey int

const (
	// CtxKey defines the context key for CtxVar.
	CtxKey ContextKey = iota
)

// CtxVar defines the context structure.
type CtxVar struct {
	Record *Record
	Attrs  Attrs
}

// Attrs carries custom attributes a handler attaches to the record of its request.
type Attrs map[string]interface{}

// ParseRecord returns the in-flight record of a logged request, or an empty one.
func ParseRecord(r *http.Request) *Record {
	if v, ok := r.Context().Value(CtxKey).(*CtxVar); ok {
		return v.Record
	}

	return &Record{}
}

// ParseAttrs returns the attributes map from the request context.
func ParseAttrs(r *http.Request) Attrs {
	if v, ok := r.Context().Value(CtxKey).(*CtxVar); ok {
		return v.Attrs
	}

	return Attrs{}
}

// PutAttr puts an attribute into the record of a logged request.
// It does nothing for requests that are not logged.
func PutAttr(r *http.Request, key string, value interface{}) {
	if v, ok := r.Context().Value(CtxKey).(*CtxVar); ok {
		v.Attrs[key] = value
	}
}

func createCtx(r *http.Request, l *Record) (context.Context, *CtxVar) {
	ctxVar := &CtxVar{Record: l, Attrs: make(Attrs)}
	newCtx := context.WithValue(r.Context(), CtxKey, ctxVar)

	return newCtx, ctxVar
}
