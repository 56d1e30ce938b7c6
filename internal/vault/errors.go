package vault

import "errors"

// Sentinel errors for the vault. Tool handlers match these with errors.Is
// to decide how much detail is safe to surface to the host.
var (
	// ErrAccessDenied means a candidate path resolved outside the vault root.
	// The wrapped message carries root/candidate/resolved diagnostics; only
	// the candidate should be echoed back to an untrusted caller.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound means the target does not exist or has the wrong type for
	// the operation (e.g. updating a directory).
	ErrNotFound = errors.New("not found")

	// ErrNotAFile means a read targeted a directory.
	ErrNotAFile = errors.New("not a file")
)
