// Package cli implements the interactive FlixFlex client: a small REPL for
// browsing the movie catalog and managing the account session.
package cli
