package routelog

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/bingoohuang/ip"
	"github.com/sirupsen/logrus"
	"github.com/spyzhov/ajson"
)

type col interface {
	get(l *Record) interface{}
}

type colFn func(l *Record) interface{}

func (f colFn) get(l *Record) interface{} { return f(l) }

type colV interface {
	get(l *Record, v string) interface{}
}

type colVFn func(l *Record, v string) interface{}

func (f colVFn) get(l *Record, v string) interface{} { return f(l, v) }

type getter struct {
	m colV
	v string
}

// nolint:gochecknoglobals
var (
	tagPattern = regexp.MustCompile(`httplog:"(.*?)"`)

	blts = make(map[matcher]col)
	rsps = make(map[matcher]colV)
	reqs = make(map[matcher]colV)
)

// nolint:gochecknoglobals
var (
	hostIPOnce  sync.Once
	hostIPValue string
)

// hostIP is the outbound IP of this host, looked up once.
func hostIP() string {
	hostIPOnce.Do(func() { hostIPValue = ip.Outbound() })

	return hostIPValue
}

// nullable turns an absent excerpt into a SQL NULL.
func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}

	return *s
}

func getJSONBody(contentType string, body *string) interface{} {
	if body == nil || !strings.Contains(contentType, "json") {
		return nil
	}

	if s := *body; strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		return s
	}

	return nil
}

func jsonpath(expr string, body *string) interface{} {
	if body == nil {
		return nil
	}

	path := expr
	if !strings.HasPrefix(expr, "$.") {
		path = "$." + expr
	}

	nodes, err := ajson.JSONPath([]byte(*body), path)
	if err != nil {
		logrus.Warnf("failed to eval JSONPath %s for body %s error %+v", path, *body, err)
		return nil
	}

	switch len(nodes) {
	case 0:
		return nil
	case 1:
		return nodeValue(nodes[0])
	default:
		vs := make([]string, len(nodes))
		for i, n := range nodes {
			vs[i] = fmt.Sprintf("%v", nodeValue(n))
		}

		return "[" + strings.Join(vs, ",") + "]"
	}
}

func nodeValue(n *ajson.Node) interface{} {
	if n.IsString() {
		s, _ := n.GetString()
		return s
	}

	return n.String()
}

func headerValue(h map[string][]string, key string) string {
	for k, vs := range h {
		if strings.EqualFold(k, key) {
			return At(vs, 0)
		}
	}

	return ""
}

// nolint:lll,gochecknoinits
func init() {
	blts[eq("id")] = colFn(func(l *Record) interface{} { return l.ID })
	blts[eq("created")] = colFn(func(l *Record) interface{} { return l.Created })
	blts[eq("ip")] = colFn(func(l *Record) interface{} { return hostIP() })
	blts[eq("hostname")] = colFn(func(l *Record) interface{} { v, _ := os.Hostname(); return v })
	blts[eq("pid")] = colFn(func(l *Record) interface{} { return os.Getpid() })
	blts[eq("started")] = colFn(func(l *Record) interface{} { return l.Start })
	blts[eq("end")] = colFn(func(l *Record) interface{} { return l.End })
	blts[eq("cost")] = colFn(func(l *Record) interface{} { return l.Duration.Milliseconds() })
	blts[eq("biz")] = colFn(func(l *Record) interface{} { return bizName(l) })
	blts[eq("handler")] = colFn(func(l *Record) interface{} { return l.Handler })
	blts[eq("remote")] = colFn(func(l *Record) interface{} { return l.RemoteAddr })
	blts[eq("client_ip")] = colFn(func(l *Record) interface{} { return l.ClientIP })
	blts[eq("panicked")] = colFn(func(l *Record) interface{} { return l.Panicked })

	rsps[starts("head_")] = colVFn(func(l *Record, v string) interface{} { return headerValue(l.RspHeader, v[5:]) })
	rsps[eq("heads")] = colVFn(func(l *Record, v string) interface{} { return fmt.Sprintf("%+v", l.RspHeader) })
	rsps[eq("body")] = colVFn(func(l *Record, v string) interface{} { return nullable(l.RspBody) })
	rsps[eq("json")] = colVFn(func(l *Record, v string) interface{} { return getJSONBody(headerValue(l.RspHeader, "Content-Type"), l.RspBody) })
	rsps[starts("json_")] = colVFn(func(l *Record, v string) interface{} { return jsonpath(v[5:], l.RspBody) })
	rsps[eq("status")] = colVFn(func(l *Record, v string) interface{} { return l.Status })
	rsps[eq("size")] = colVFn(func(l *Record, v string) interface{} { return l.RspSize })

	reqs[starts("head_")] = colVFn(func(l *Record, v string) interface{} { return headerValue(l.ReqHeader, v[5:]) })
	reqs[eq("heads")] = colVFn(func(l *Record, v string) interface{} { return fmt.Sprintf("%+v", l.ReqHeader) })
	reqs[eq("body")] = colVFn(func(l *Record, v string) interface{} { return nullable(l.ReqBody) })
	reqs[eq("json")] = colVFn(func(l *Record, v string) interface{} { return getJSONBody(headerValue(l.ReqHeader, "Content-Type"), l.ReqBody) })
	reqs[starts("json_")] = colVFn(func(l *Record, v string) interface{} { return jsonpath(v[5:], l.ReqBody) })

	reqs[eq("method")] = colVFn(func(l *Record, v string) interface{} { return l.Method })
	reqs[eq("url")] = colVFn(func(l *Record, v string) interface{} { return l.URI })
	reqs[starts("path_")] = colVFn(func(l *Record, v string) interface{} { return l.pathVar(v[5:]) })
	reqs[eq("paths")] = colVFn(func(l *Record, v string) interface{} { return fmt.Sprintf("%v", l.pathVars()) })
	reqs[starts("query_")] = colVFn(func(l *Record, v string) interface{} { return l.queryVar(v[6:]) })
	reqs[eq("queries")] = colVFn(func(l *Record, v string) interface{} { return l.queryVars() })
	reqs[starts("param_")] = colVFn(func(l *Record, v string) interface{} { return l.paramVar(v[6:]) })
	reqs[eq("params")] = colVFn(func(l *Record, v string) interface{} { return l.paramVars() })
}

func bizName(l *Record) string {
	if l.HandlerInfo == nil {
		return Option{}.GetName()
	}

	return l.HandlerInfo.GetName()
}

// TableCol defines the schema of a table column.
type TableCol struct {
	Name      string
	Comment   string
	DataType  string
	MaxLength int
	Seq       int

	getter col
}

// parseComment binds the column to a value getter. The tag is the lower-cased
// column name unless the comment carries one, like `httplog:"rsp_json_data.id"`.
func (s *TableCol) parseComment() {
	tag := strings.ToLower(s.Name)
	if sub := tagPattern.FindStringSubmatch(s.Comment); len(sub) > 0 {
		tag = sub[1]
	}

	switch {
	case strings.HasPrefix(tag, "req_"):
		s.getter = createValueGetter(tag[4:], reqs)
	case strings.HasPrefix(tag, "rsp_"):
		s.getter = createValueGetter(tag[4:], rsps)
	case strings.HasPrefix(tag, "ctx_"):
		s.getter = createCtxValueGetter(tag[4:])
	case tag == "-":
		s.getter = nil
	default:
		s.getter = createBuiltinValueGetter(tag)
	}

	if s.getter != nil {
		s.getter = s.wrapMaxLength(s.getter)
	}
}

func (s *TableCol) wrapMaxLength(c col) col {
	maxLength := s.MaxLength

	return colFn(func(l *Record) interface{} {
		v := c.get(l)

		if v == nil || maxLength <= 0 {
			return v
		}

		switch vv := v.(type) {
		case int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			bool, float32, float64, time.Time:
			return v
		case string:
			return Abbreviate(vv, maxLength)
		default:
			return Abbreviate(fmt.Sprintf("%v", v), maxLength)
		}
	})
}

func (g getter) get(l *Record) interface{} { return g.m.get(l, g.v) }

func createBuiltinValueGetter(tag string) col {
	for k, v := range blts {
		if k.matches(tag) {
			return v
		}
	}

	return nil
}

func createCtxValueGetter(tag string) col {
	return colFn(func(l *Record) interface{} { return l.Attrs[tag] })
}

func createValueGetter(tag string, m map[matcher]colV) col {
	for k, v := range m {
		if k.matches(tag) {
			return getter{m: v, v: tag}
		}
	}

	return nil
}

type matcher interface {
	matches(tag string) bool
}

type equalMatcher struct{ value string }

func eq(v string) matcher { return equalMatcher{value: v} }

func (r equalMatcher) matches(tag string) bool { return r.value == tag }

type startsMatcher struct{ value string }

func starts(v string) matcher { return startsMatcher{value: v} }

func (r startsMatcher) matches(tag string) bool { return strings.HasPrefix(tag, r.value) }
