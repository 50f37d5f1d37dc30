package main

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bingoohuang/routelog"
)

type user struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// nolint:gochecknoglobals
var users = []user{{ID: "1", Name: "bingoo"}, {ID: "2", Name: "huang"}}

func newRouter() chi.Router {
	r := chi.NewRouter()

	r.Get("/test/hello", handleHello)
	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/hello", handleHello)
		r.Post("/echo", handleEcho)
		r.Get("/users", handleUsers)
		r.Get("/users/{id}", handleUser)
	})

	return r
}

// newApp puts the logging dispatcher in front of the router.
func newApp(routesToLog []string, fns ...routelog.ConfigFn) http.Handler {
	return routelog.New(newRouter(), routesToLog, fns...)
}

func handleHello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Hello world")
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func handleEcho(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}

	_, _ = io.Copy(w, r.Body)
}

func handleUsers(w http.ResponseWriter, _ *http.Request) {
	_ = routelog.WriteJSON(w, users)
}

func handleUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	routelog.PutAttr(r, "userID", id)

	for _, u := range users {
		if u.ID == id {
			_ = routelog.WriteJSON(w, u)
			return
		}
	}

	http.Error(w, "user not found", http.StatusNotFound)
}
