// Package api provides the HTTP server exposing the chat endpoint.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// Keywords maps lowercase corpus keywords to project ids, used by
	// the media intent policy.
	Keywords map[string]string
}
