// Package domain defines the core types for the HackMaster Pi wordlist service.
//
// # Core Types
//
// Facts holds the personal information a wordlist is derived from: dates,
// phone numbers, names, identification numbers and a Wi-Fi network name.
//
// CandidateSet holds the per-category variants derived from a Facts value
// for a single generation run.
//
// Run records a completed generation: where the wordlist was written, how
// many candidates were considered and accepted, and a short sample.
//
// # Design Principles
//
// - No database or external dependencies beyond identifiers
// - Facts are treated as immutable input
package domain
