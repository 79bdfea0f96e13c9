// Package xdr implements External Data Representation encoding and decoding
// per RFC 4506. It has no dependencies on gonfsd-specific packages: callers
// pass a *bytes.Buffer to write into and an io.Reader to read from, and this
// package only ever emits/consumes big-endian, 4-byte-aligned wire bytes.
package xdr

// MaxOpaqueLength bounds a single variable-length opaque or string field
// decoded off the wire. It equals the 1 MiB wtmax FSINFO advertises, so
// the largest WRITE a client is told to send still fits; the limit exists
// to stop a corrupt or hostile length prefix from driving an unbounded
// allocation.
const MaxOpaqueLength = 1024 * 1024
