package wal

import "errors"

// Sentinel errors for the error kinds in the durability protocol. Callers
// distinguish failure kinds with errors.Is against these, never by string
// matching.
var (
	// ErrShortRead means Read(size) could not return size bytes because EOF
	// was reached first.
	ErrShortRead = errors.New("wal: short read")

	// ErrOpenPrerequisiteMissing means one of the four required files is
	// absent at open time; the directory is not a WAL.
	ErrOpenPrerequisiteMissing = errors.New("wal: directory is missing a required file")

	// ErrDirectoryPreconditionFailed means New was called on a path that is
	// not an existing, empty directory.
	ErrDirectoryPreconditionFailed = errors.New("wal: directory precondition failed")
)
