// Package fuzztests houses Go fuzz harnesses for the front of the pyjs
// pipeline: unit loading, specialization and the type-key and mangling
// functions. They guard against panics and hangs on arbitrary input and
// check the structural invariants of every module that loads cleanly.
package fuzztests
