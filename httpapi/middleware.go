package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/cors"
)

const corsMaxAgeSeconds = 86400

// newCORS allows exactly the configured origins, compared case-insensitively and without a
// trailing slash. Without configured origins any http://localhost or http://127.0.0.1 origin is allowed.
func newCORS(origins []string) *cors.Cors {
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		if normalized := normalizeOrigin(origin); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool {
			normalized := normalizeOrigin(origin)

			if len(allowed) == 0 {
				return strings.HasPrefix(normalized, "http://localhost") || strings.HasPrefix(normalized, "http://127.0.0.1")
			}

			_, ok := allowed[normalized]

			return ok
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           corsMaxAgeSeconds,
	})
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
}

func securityHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Content-Security-Policy", "default-src 'none'")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		h.Del("Server")

		return next(c)
	}
}
