// Package cli is responsible for the command tree, flag binding, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's configuration and delegates
// execution to the app and tools packages.
package cli
