package middleware

import (
	"github.com/go-chi/cors"
)

// NewCORS builds the CORS middleware for the analysis API. The API is
// read-mostly, so only GET and POST are allowed alongside preflight.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
}
