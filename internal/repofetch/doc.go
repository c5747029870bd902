// Package repofetch retrieves GitHub repository metadata and README content
// for analysis. It needs no token for public repositories.
package repofetch
