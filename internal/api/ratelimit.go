package api

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// rateLimited is an operation middleware that limits write requests by client IP.
// Returns 429 Too Many Requests when the limit is exceeded.
func (s *Server) rateLimited(ctx huma.Context, next func(huma.Context)) {
	key := clientIP(ctx)

	if !s.limiter.Allow(key) {
		s.logger.Warn("Rate limit exceeded",
			"ip", key,
			"path", ctx.URL().Path,
		)
		if err := huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many requests. Please try again later."); err != nil {
			s.logger.Error("Failed to write rate limit response", "error", err)
		}
		return
	}

	next(ctx)
}

// clientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func clientIP(ctx huma.Context) string {
	// First entry in X-Forwarded-For is the client.
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	// Strip the port from RemoteAddr.
	ip := ctx.RemoteAddr()
	if i := strings.LastIndexByte(ip, ':'); i >= 0 {
		return ip[:i]
	}
	return ip
}
