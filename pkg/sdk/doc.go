// Package sdk is an HTTP client for a docref server.
//
// It mirrors the REST API: collections, documents, batch writes, and
// reference resolution. For embedding docref in-process without a server,
// use the root docref package instead.
package sdk
