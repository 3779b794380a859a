package datastore

import "errors"

var (
	// ErrExists is returned by Save when replace is false and the key is present.
	ErrExists = errors.New("datastore: key already exists")
	// ErrNotFound is returned when a key is absent from its namespace.
	ErrNotFound = errors.New("datastore: key not found")
	// ErrClosed is returned for operations on a closed store.
	ErrClosed = errors.New("datastore: store is closed")
	// ErrInvalidKey is returned for an empty namespace or key.
	ErrInvalidKey = errors.New("datastore: namespace and key must not be empty")
)
