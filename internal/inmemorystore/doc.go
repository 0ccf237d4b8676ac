// Package inmemorystore provides a thread-safe, in-memory implementation
// of the nodestore.Store interface. It backs every local decoding session;
// nothing it holds outlives the session that created it.
package inmemorystore
