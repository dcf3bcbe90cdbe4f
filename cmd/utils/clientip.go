package utils

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the originating client address from a request,
// preferring proxy headers over the raw remote address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First address in the list is the original client
		parts := strings.Split(fwd, ",")
		ip := strings.TrimSpace(parts[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if real := r.Header.Get("X-Real-IP"); real != "" {
		if net.ParseIP(real) != nil {
			return real
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
