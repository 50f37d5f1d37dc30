package routelog

import (
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// IPAddrFromRemoteAddr parses the IP Address.
// Request.RemoteAddress contains port, which we want to remove i.e.: "[::1]:58292" => "::1".
func IPAddrFromRemoteAddr(s string) string {
	if host, _, err := net.SplitHostPort(s); err == nil {
		return host
	}

	idx := strings.LastIndex(s, ":")
	if idx == -1 {
		return s
	}

	return s[:idx]
}

// GetRemoteAddress returns ip address of the client making the request, taking into account http proxies.
func GetRemoteAddress(r *http.Request) string {
	hdr := r.Header
	hdrRealIP := hdr.Get("X-Real-Ip")
	hdrForwardedFor := hdr.Get("X-Forwarded-For")

	if hdrRealIP == "" && hdrForwardedFor == "" {
		return IPAddrFromRemoteAddr(r.RemoteAddr)
	}

	if hdrForwardedFor != "" {
		// X-Forwarded-For is potentially a list of addresses separated with ","
		parts := strings.Split(hdrForwardedFor, ",")
		return strings.TrimSpace(parts[0])
	}

	return hdrRealIP
}

// IsWsRequest return true if this request is a websocket upgrade request.
func IsWsRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// NewServer creates a http server for h with the timeouts used by the demo.
func NewServer(addr string, h http.Handler) *http.Server {
	// nolint:gomnd
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       120 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// At returns the i-th element of s, or "".
func At(s []string, i int) string {
	if i >= 0 && i < len(s) {
		return s[i]
	}

	return ""
}

// Abbreviate cuts s to at most maxLen runes, marking the cut with "...".
func Abbreviate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	const ellipsis = "..."

	if maxLen <= len(ellipsis) {
		return string([]rune(s)[:maxLen])
	}

	return string([]rune(s)[:maxLen-len(ellipsis)]) + ellipsis
}
