// Package output writes generated artifacts into the output directory.
//
// Every write goes through a FileManager, which substitutes the registered
// tokens (plain literal replacement, in registration order) and records the
// write in a ledger of (destination, source) pairs. Writes are synchronous;
// a FileManager is not safe for concurrent use.
package output
