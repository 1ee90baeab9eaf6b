// Package handler implements HTTP request handlers for the HackMaster Pi
// dashboard.
//
// # Handlers
//
// WordlistHandler serves the wordlist generator: the dashboard form endpoint
// under /WiFi/wordlist-generator and the REST API under /api/wordlists.
//
// Middleware provides panic recovery, CORS and request logging.
//
// # Response Format
//
// REST endpoints return JSON data with 200 or 201 on success and
// {error, details} with an appropriate status code on failure. The form
// endpoint keeps the dashboard's {success, ...} contract and always answers
// 200 so the page script can read the error text.
package handler
