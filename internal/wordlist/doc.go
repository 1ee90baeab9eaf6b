// Package wordlist turns personal facts into a candidate password list.
//
// A Generator derives variants for each category of a domain.Facts value
// (dates, phone numbers, ID numbers, names) and walks a fixed grammar over
// them: every single-category variant, every name/date pair joined by each
// separator in both orders, every name/filler pair joined by each separator
// in both orders, and finally the network name. Each emitted string is kept
// only when it is at least MinLength characters long.
//
// Accepted candidates are appended to a Sink. LineSink writes one candidate
// per line to any io.Writer, FileSink appends to a file, SyncSink serializes
// appends from concurrent runs, and SliceSink keeps candidates in memory.
//
// The order of emission is part of the contract and is stable for a given
// input and Options.
package wordlist
