// Package batch slices every grid file of an input directory, one after the
// other.
//
// The Driver owns the failure policy: a source that becomes unreadable, or
// whose tiles cannot be written, is recorded in the broken-sources ledger and
// the batch moves on to the next file. Only invalid tile parameters, an
// unreadable input directory and cancellation stop a batch early.
package batch
