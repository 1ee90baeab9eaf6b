// Package repository defines the data access interfaces for HackMaster Pi.
//
// The Runs interface records completed wordlist generations so the dashboard
// can list, download and delete earlier wordlists. The actual implementation
// is in the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation stores one row per run, with the input facts and
// the output sample serialized as JSON. The schema is created on open.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
