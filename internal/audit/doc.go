// Package audit records every mutation of the knowledge graph as an
// immutable event trail. Subpackages split the concern: models holds the
// event record and its serialization, service implements the log and
// query operations, handler exposes the read side over HTTP.
package audit
