package routelog

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bingoohuang/strcase"
	jsoniter "github.com/json-iterator/go"
	"github.com/json-iterator/go/extra"
	"github.com/sirupsen/logrus"
)

// nolint
var (
	jsonContentType = []string{"application/json; charset=utf-8"}

	JSONUnmarshal     = jsoniter.Unmarshal
	JSONMarshal       = jsoniter.Marshal
	JSONMarshalIndent = jsoniter.MarshalIndent
)

// nolint:gochecknoinits
func init() {
	extra.SetNamingStrategy(strcase.ToCamelLower)
}

// WriteJSON marshals the given interface object and writes it with JSON ContentType.
func WriteJSON(w http.ResponseWriter, obj interface{}) error {
	writeContentType(w, jsonContentType)
	return jsoniter.NewEncoder(w).Encode(&obj)
}

func writeContentType(w http.ResponseWriter, value []string) {
	header := w.Header()

	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = value
	}
}

// jsonRecord is the line written by JSONStore. Absent excerpts are left out.
type jsonRecord struct {
	ID         string              `json:"id"`
	Created    time.Time           `json:"created"`
	Status     int                 `json:"status"`
	Method     string              `json:"method"`
	URI        string              `json:"uri"`
	Params     map[string][]string `json:"params,omitempty"`
	RemoteAddr string              `json:"remote"`
	ClientIP   string              `json:"clientIp,omitempty"`
	Handler    string              `json:"handler"`
	ReqBody    *string             `json:"reqBody,omitempty"`
	RspBody    *string             `json:"rspBody,omitempty"`
	RspSize    int64               `json:"rspSize"`
	CostMs     int64               `json:"costMs"`
	Panicked   bool                `json:"panicked,omitempty"`
	Attrs      Attrs               `json:"attrs,omitempty"`
}

// JSONStore writes every record as one JSON line.
type JSONStore struct {
	w  io.Writer
	mu sync.Mutex
}

// NewJSONStore returns a JSONStore writing to w.
func NewJSONStore(w io.Writer) *JSONStore {
	return &JSONStore{w: w}
}

// Store writes l as a JSON line.
func (s *JSONStore) Store(l *Record) {
	line, err := JSONMarshal(jsonRecord{
		ID:         l.ID,
		Created:    l.Created,
		Status:     l.Status,
		Method:     l.Method,
		URI:        l.URI,
		Params:     l.Params,
		RemoteAddr: l.RemoteAddr,
		ClientIP:   l.ClientIP,
		Handler:    l.Handler,
		ReqBody:    l.ReqBody,
		RspBody:    l.RspBody,
		RspSize:    l.RspSize,
		CostMs:     l.Duration.Milliseconds(),
		Panicked:   l.Panicked,
		Attrs:      l.Attrs,
	})
	if err != nil {
		logrus.Warnf("routelog: marshal record %s: %v", l.ID, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.Write(append(line, '\n')); err != nil {
		logrus.Warnf("routelog: write record %s: %v", l.ID, err)
	}
}
