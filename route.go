package routelog

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
)

// MatchMode defines how a route entry is compared with the request path.
type MatchMode int

const (
	// MatchContains logs a request when any route is a substring of its path.
	// "/api/" matches "/api/users" and also "/foo/api/users".
	MatchContains MatchMode = iota
	// MatchPrefix logs a request when its path starts with any route.
	MatchPrefix
	// MatchGlob treats every route as a doublestar pattern, like "/api/**".
	MatchGlob
)

// ParseMatchMode parses contains, prefix or glob. Unknown values fall back to MatchContains.
func ParseMatchMode(s string) MatchMode {
	switch strings.ToLower(s) {
	case "prefix":
		return MatchPrefix
	case "glob":
		return MatchGlob
	default:
		return MatchContains
	}
}

func (m MatchMode) String() string {
	switch m {
	case MatchPrefix:
		return "prefix"
	case MatchGlob:
		return "glob"
	default:
		return "contains"
	}
}

// Routes is the immutable list of routes to log.
type Routes struct {
	entries []string
	mode    MatchMode
}

// NewRoutes copies entries so later changes by the caller are not observed.
func NewRoutes(mode MatchMode, entries ...string) Routes {
	cp := make([]string, len(entries))
	copy(cp, entries)

	if mode == MatchGlob {
		for _, e := range cp {
			if !doublestar.ValidatePattern(e) {
				logrus.Warnf("routelog: invalid glob route %q never matches", e)
			}
		}
	}

	return Routes{entries: cp, mode: mode}
}

// Enabled tells whether any route is configured.
func (r Routes) Enabled() bool { return len(r.entries) > 0 }

// Entries returns a copy of the configured routes.
func (r Routes) Entries() []string {
	cp := make([]string, len(r.entries))
	copy(cp, r.entries)

	return cp
}

// Mode returns the match mode.
func (r Routes) Mode() MatchMode { return r.mode }

// Match tells whether a request to path should be logged.
func (r Routes) Match(path string) bool {
	for _, e := range r.entries {
		if r.matches(e, path) {
			return true
		}
	}

	return false
}

func (r Routes) matches(route, path string) bool {
	switch r.mode {
	case MatchPrefix:
		return strings.HasPrefix(path, route)
	case MatchGlob:
		ok, _ := doublestar.Match(route, path)
		return ok
	default:
		return strings.Contains(path, route)
	}
}

// ShouldLog returns true iff routes is not empty and some route is a substring of path.
func ShouldLog(path string, routes []string) bool {
	return Routes{entries: routes}.Match(path)
}
