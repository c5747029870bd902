// Package httpd serves the session API: creating sessions, streaming
// uploads, reporting processor results, and querying pipeline status.
package httpd
