// Package resp implements the wire value model and codec for the store's
// protocol: a recursive tagged union (simple strings, errors, integers,
// nullable bulk strings, nullable arrays) together with an incremental
// decoder, a buffered writer, and strict type-narrowing accessors.
//
// Decode operates on byte prefixes and signals ErrIncomplete when more input
// is needed, so it can sit directly on a streaming transport. Reader wraps
// that loop over an io.Reader; Writer produces byte-exact request and reply
// framing.
package resp
