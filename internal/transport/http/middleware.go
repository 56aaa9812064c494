package http

import (
	"net"
	"net/http"

	"github.com/rs/cors"
)

// withCORS answers preflight requests and sets the allow-origin header for
// permitted browser origins. An empty origin list allows any.
func (t *Transport) withCORS(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: t.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", SourceHeader},
	}).Handler(next)
}

// originAllowed reports whether a browser origin may open a WebSocket.
// Requests without an Origin header come from non-browser clients.
func (t *Transport) originAllowed(origin string) bool {
	if origin == "" || t.origins == nil {
		return true
	}
	_, ok := t.origins[origin]
	return ok
}

// clientIP is the rate limiting key of REST requests.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
