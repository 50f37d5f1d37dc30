package routelog

import (
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// Record describes one logged request/response pair.
type Record struct {
	ID      string
	Created time.Time

	// Status, like 200, 404.
	Status int
	// Method is GET etc.
	Method string
	// URI is the escaped request path without the query.
	URI string
	// Params holds the query parameters, plus the form values when the handler parsed them.
	Params url.Values
	// RemoteAddr is the IP of the peer, port stripped.
	RemoteAddr string
	// ClientIP honours X-Real-Ip and X-Forwarded-For.
	ClientIP string
	// Handler is the descriptor of the handler that served the request.
	Handler     string
	HandlerInfo *HandlerInfo

	ReqHeader http.Header
	RspHeader http.Header

	// ReqBody is the request body excerpt, nil when nothing was read or it could not be decoded.
	ReqBody *string
	// RspBody is the response body excerpt, nil when nothing was written or it could not be decoded.
	RspBody *string
	// RspSize is the number of body bytes the handler wrote.
	RspSize int64

	// Start records the start time of the handler.
	Start time.Time
	// End records the end time of the handler.
	End time.Time
	// Duration means how long the handler took.
	Duration time.Duration
	// Panicked tells the handler did not return normally.
	Panicked bool
	Attrs    Attrs

	request *http.Request
}

// ReqBodyString returns the request excerpt or "".
func (l *Record) ReqBodyString() string { return deref(l.ReqBody) }

// RspBodyString returns the response excerpt or "".
func (l *Record) RspBodyString() string { return deref(l.RspBody) }

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func (l *Record) pathVar(name string) string {
	if l.HandlerInfo == nil {
		return ""
	}

	return l.HandlerInfo.Params.ByName(name)
}

func (l *Record) pathVars() map[string]string {
	m := make(map[string]string)

	if l.HandlerInfo != nil {
		for _, p := range l.HandlerInfo.Params {
			m[p.Key] = p.Value
		}
	}

	return m
}

func (l *Record) queryVar(name string) string {
	if l.request == nil {
		return ""
	}

	return At(l.request.URL.Query()[name], 0)
}

func (l *Record) queryVars() string {
	if l.request == nil {
		return ""
	}

	return l.request.URL.RawQuery
}

func (l *Record) paramVar(name string) string { return At(l.Params[name], 0) }

func (l *Record) paramVars() string { return l.Params.Encode() }

func (l *Record) tables() []string {
	if l.HandlerInfo == nil {
		return nil
	}

	return l.HandlerInfo.Tables
}

// Store defines the interface to store a record.
type Store interface {
	// Store stores the record in a log, a database like MySQL, and etc.
	Store(l *Record)
}

// StoreFunc adapts a function to Store.
type StoreFunc func(l *Record)

// Store calls f(l).
func (f StoreFunc) Store(l *Record) { f(l) }

// Stores fans a record out to every store in order.
type Stores []Store

// Store stores l in every store.
func (s Stores) Store(l *Record) {
	for _, store := range s {
		if store != nil {
			store.Store(l)
		}
	}
}

// LogrusStore stores the record as a logrus entry.
type LogrusStore struct {
	Logger logrus.FieldLogger
	Level  logrus.Level
}

// NewLogrusStore returns a new LogrusStore writing info entries to the standard logger.
func NewLogrusStore() *LogrusStore {
	return &LogrusStore{Logger: logrus.StandardLogger(), Level: logrus.InfoLevel}
}

// Store logs l with its fields.
func (s *LogrusStore) Store(l *Record) {
	logger := s.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	fields := logrus.Fields{
		"id":       l.ID,
		"status":   l.Status,
		"method":   l.Method,
		"uri":      l.URI,
		"params":   l.Params,
		"remote":   l.RemoteAddr,
		"handler":  l.Handler,
		"duration": l.Duration,
	}

	if l.ReqBody != nil {
		fields["reqBody"] = *l.ReqBody
	}

	if l.RspBody != nil {
		fields["rspBody"] = *l.RspBody
	}

	if l.Panicked {
		fields["panicked"] = true
	}

	if len(l.Attrs) > 0 {
		fields["attrs"] = l.Attrs
	}

	entry := logger.WithFields(fields)

	switch s.Level {
	case logrus.DebugLevel, logrus.TraceLevel:
		entry.Debug("http")
	case logrus.WarnLevel:
		entry.Warn("http")
	default:
		entry.Info("http")
	}
}
