// Package generator runs one client generation end to end: resolve the
// metadata document, gate on its schema version, hand it to an engine,
// write the results through the output manager and finally run the
// configured plugins.
//
// Every step is synchronous and runs in order. The first failure aborts the
// run; engine diagnostics are logged and returned but never abort.
package generator
