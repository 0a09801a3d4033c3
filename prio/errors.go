package prio

import "errors"

var (
	// ErrSelfDependency is returned when a PRIORITY frame names its own
	// stream as its dependency (RFC 7540 §5.3.1).
	ErrSelfDependency = errors.New("prio: stream cannot depend on itself")

	// ErrRootReparented is returned when the connection stream (id 0)
	// is named as the stream to reparent; it is always the implicit
	// root and never a dependent.
	ErrRootReparented = errors.New("prio: stream 0 cannot be reparented")
)
