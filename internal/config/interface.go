package config

import "context"

// Loader is the interface for a format-specific rules loader.
type Loader interface {
	// Load reads the rules found at path and merges them over the defaults.
	Load(ctx context.Context, path string) (*Rules, error)
}
