package routelog_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bingoohuang/routelog"
)

func BenchmarkBaseline(b *testing.B) {
	benchmark(b, nil)
}

func BenchmarkPassThrough(b *testing.B) {
	benchmark(b, []string{"/api/"})
}

func BenchmarkLogging(b *testing.B) {
	benchmark(b, []string{"/"})
}

func benchmark(b *testing.B, routes []string) {
	b.StopTimer()

	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})

	if routes != nil {
		h = routelog.New(h, routes, routelog.WithStore(routelog.StoreFunc(func(*routelog.Record) {})))
	}

	s := httptest.NewServer(h)
	defer s.Close()

	b.StartTimer()

	for i := 0; i < b.N; i++ {
		res, err := http.Get(s.URL)
		if err != nil {
			b.Fatal(err)
		}

		_ = res.Body.Close()
	}
}
