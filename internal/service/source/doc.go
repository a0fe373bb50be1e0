// Package source fetches the remote version manifest and release artifacts.
//
// Requests run over plain HTTP GET with a bounded timeout. Artifacts are
// buffered in memory and capped by the configured size limit.
package source
