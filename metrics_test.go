package routelog_test

import (
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bingoohuang/routelog"
)

// nolint:funlen
func TestCaptureMetrics(t *testing.T) {
	// Some of the edge cases tested below cause the net/http pkg to log some
	// messages that add a lot of noise to the `go test -v` output, so we discard
	// the log here.
	log.SetOutput(ioutil.Discard)
	defer log.SetOutput(os.Stderr)

	tests := []struct {
		Handler      http.Handler
		WantDuration time.Duration
		WantWritten  int64
		WantCode     int
		WantErr      string
		WantPanicked bool
	}{
		{
			Handler:  http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
			WantCode: http.StatusOK,
		},
		{
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte("foo"))
				_, _ = w.Write([]byte("bar"))
				time.Sleep(25 * time.Millisecond)
			}),
			WantCode:     http.StatusBadRequest,
			WantWritten:  6,
			WantDuration: 25 * time.Millisecond,
		},
		{
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("foo"))
				w.WriteHeader(http.StatusNotFound)
			}),
			WantCode:    http.StatusOK,
			WantWritten: 3,
		},
		{
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic("oh no")
			}),
			WantCode:     http.StatusOK,
			WantErr:      "EOF",
			WantPanicked: true,
		},
	}

	for i, tc := range tests {
		tc := tc

		func() {
			ch := make(chan *routelog.Record, 1)
			store := routelog.StoreFunc(func(l *routelog.Record) { ch <- l })
			s := httptest.NewServer(routelog.New(tc.Handler, []string{"/"}, routelog.WithStore(store)))

			defer s.Close()

			res, err := http.Get(s.URL)

			if !errContains(err, tc.WantErr) {
				t.Errorf("tc %d: got=%s want=%s", i, err, tc.WantErr)
			}

			if err == nil {
				defer res.Body.Close()

				if res.StatusCode != tc.WantCode {
					t.Errorf("tc %d: client got=%d want=%d", i, res.StatusCode, tc.WantCode)
				}
			}

			m := <-ch

			switch {
			case m.Status != tc.WantCode:
				t.Errorf("tc %d: got=%d want=%d", i, m.Status, tc.WantCode)
			case m.Duration < tc.WantDuration:
				t.Errorf("tc %d: got=%s want=%s", i, m.Duration, tc.WantDuration)
			case m.RspSize < tc.WantWritten:
				t.Errorf("tc %d: got=%d want=%d", i, m.RspSize, tc.WantWritten)
			case m.Panicked != tc.WantPanicked:
				t.Errorf("tc %d: panicked got=%v want=%v", i, m.Panicked, tc.WantPanicked)
			}
		}()
	}
}

func errContains(err error, s string) bool {
	var errS string
	if err == nil {
		errS = ""
	} else {
		errS = err.Error()
	}

	return strings.Contains(errS, s)
}
