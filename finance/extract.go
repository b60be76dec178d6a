// Package finance extracts quote and statistics data from finance page HTML.
//
// The package is pure: every function takes the page markup (or a container
// located in it) and returns plain records. Nothing is fetched, cached or
// logged here.
package finance
