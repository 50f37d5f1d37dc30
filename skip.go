package routelog

import (
	"net/http"
)

// skipLogging tells a matched request should still pass through without capture.
func skipLogging(r *http.Request, info *HandlerInfo) bool {
	switch {
	case info != nil && info.Ignore:
		return true
	case IsWsRequest(r):
		// the capture writer cannot be hijacked
		return true
	}

	return false
}
