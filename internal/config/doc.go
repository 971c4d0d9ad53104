// Package config defines the format-agnostic job model of a slicing run and
// the Loader interface for reading it from a job file.
//
// A Job is assembled from several sources. Each source produces a partial Job
// whose zero fields mean "not set"; Merge lays them over one another in
// precedence order (environment, then job file, then command-line flags) and
// ApplyDefaults fills whatever is still missing. Concrete loaders live in the
// hclconfig and yamlconfig packages.
package config
