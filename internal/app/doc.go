// Package app contains the core application logic. It resolves the job
// configuration, wires the tile sink, ledger, metrics and batch driver
// together, and runs a batch or a watch loop, decoupled from any specific
// entrypoint like a CLI or server.
package app
