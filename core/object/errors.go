package object

import "errors"

// These map directly to the TypeErrors spec.md §4.2's "Failure semantics"
// names: writing a non-writable property, deleting a non-configurable
// one, extending a non-extensible object, and installing a prototype
// that would create a cycle.
var (
	ErrNotWritable      = errors.New("object: property is not writable")
	ErrNotConfigurable  = errors.New("object: property is not configurable")
	ErrNotExtensible    = errors.New("object: object is not extensible")
	ErrPrototypeCycle   = errors.New("object: prototype chain would cycle")
	ErrInvalidArrayLength = errors.New("object: invalid array length")
	ErrProxyRevoked       = errors.New("object: proxy has been revoked")
	ErrProxyInvariant     = errors.New("object: proxy trap violated an invariant")
)
