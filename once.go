// Package once implements lock-free write-once slice cells.
//
// A cell holds at most one heap-owned slice, settable exactly once. Any
// number of goroutines may race to set it; exactly one wins, the rest keep
// their input. Reads are wait-free and never observe a partially published
// slice. The zero value of each cell is unset and ready for use, including
// in package-level variables.
package once
