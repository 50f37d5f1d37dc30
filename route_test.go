package routelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldLog(t *testing.T) {
	assert.False(t, ShouldLog("/api/users", nil))
	assert.False(t, ShouldLog("/api/users", []string{}))
	assert.True(t, ShouldLog("/api/users", []string{"/api/"}))
	assert.True(t, ShouldLog("/v1/api/users", []string{"/api/"}))
	assert.False(t, ShouldLog("/health", []string{"/api/", "/admin"}))
	assert.True(t, ShouldLog("/admin/users", []string{"/api/", "/admin"}))
}

func TestRoutesMatchModes(t *testing.T) {
	tests := []struct {
		mode  MatchMode
		route string
		path  string
		want  bool
	}{
		{MatchContains, "/api/", "/api/users", true},
		{MatchContains, "/api/", "/foo/api/users", true},
		{MatchPrefix, "/api/", "/api/users", true},
		{MatchPrefix, "/api/", "/foo/api/users", false},
		{MatchGlob, "/api/**", "/api/users/1", true},
		{MatchGlob, "/api/*", "/api/users/1", false},
		{MatchGlob, "/api/*/orders", "/api/u1/orders", true},
		{MatchGlob, "/api/[", "/api/[", false},
	}

	for _, tc := range tests {
		r := NewRoutes(tc.mode, tc.route)
		assert.Equal(t, tc.want, r.Match(tc.path), "%s %s %s", tc.mode, tc.route, tc.path)
	}
}

func TestRoutesAreCopied(t *testing.T) {
	entries := []string{"/api/"}
	r := NewRoutes(MatchContains, entries...)

	entries[0] = "/admin/"

	assert.True(t, r.Enabled())
	assert.Equal(t, []string{"/api/"}, r.Entries())
	assert.True(t, r.Match("/api/users"))
	assert.False(t, r.Match("/admin/users"))

	got := r.Entries()
	got[0] = "/other/"
	assert.Equal(t, []string{"/api/"}, r.Entries())

	assert.False(t, NewRoutes(MatchPrefix).Enabled())
}

func TestParseMatchMode(t *testing.T) {
	assert.Equal(t, MatchPrefix, ParseMatchMode("prefix"))
	assert.Equal(t, MatchGlob, ParseMatchMode("GLOB"))
	assert.Equal(t, MatchContains, ParseMatchMode("contains"))
	assert.Equal(t, MatchContains, ParseMatchMode("whatever"))
	assert.Equal(t, "glob", MatchGlob.String())
}
