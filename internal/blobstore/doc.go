// Package blobstore stores session media objects under stable keys.
//
// Objects are addressed by slash-separated keys grouped per stage and
// session. Writes replace whole objects atomically, which is what lets a
// stage run twice against the same inputs without corrupting its output.
package blobstore
