// Package cleanup reclaims storage from sessions past their retention
// window. Each sweep removes the session row, its blobs, and its staging
// scratch space.
package cleanup
