package config

import "context"

// Loader is the interface for a format-specific job file loader.
type Loader interface {
	// Load reads the job file at path into a partial Job. Fields the file
	// does not mention are left at their zero value.
	Load(ctx context.Context, path string) (*Job, error)
}
