package middleware

import (
	"slices"
	"strings"

	"github.com/go-chi/cors"
)

const defaultOrigin = "http://localhost:3000"

// CORS builds the cors.Options for the public API. Blank entries are dropped.
// A "*" origin disables credentials, since browsers refuse credentialed
// responses for a wildcard origin.
func CORS(allowedOrigins []string) cors.Options {
	origins := make([]string, 0, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{defaultOrigin}
	}

	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Retry-After"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           600,
	}
}
