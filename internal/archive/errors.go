package archive

import "fmt"

// CannotCreateDirError means the target directory could not be created.
// Fatal to the call; nothing is retried.
type CannotCreateDirError struct {
	Dir string
	Err error
}

func (e *CannotCreateDirError) Error() string {
	return fmt.Sprintf("cannot create target directory %s: %v", e.Dir, e.Err)
}

func (e *CannotCreateDirError) Unwrap() error { return e.Err }

// NameConflictError signals that the planned filename already exists and
// the conflict policy is PolicyAsk. The caller is expected to present the
// conflict and re-invoke Place with an explicit policy.
type NameConflictError struct {
	Path string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("target file already exists: %s", e.Path)
}

// MoveError wraps a failed move. The filesystem move is atomic-or-failed;
// nothing is left half-done.
type MoveError struct {
	Err error
}

func (e *MoveError) Error() string { return fmt.Sprintf("move failed: %v", e.Err) }
func (e *MoveError) Unwrap() error { return e.Err }

// CopyError wraps a failed copy.
type CopyError struct {
	Err error
}

func (e *CopyError) Error() string { return fmt.Sprintf("copy failed: %v", e.Err) }
func (e *CopyError) Unwrap() error { return e.Err }

// DeleteOriginalError means the copy succeeded but deleting the source
// did not: the file now exists in two places. Partial success, not a
// rollback trigger.
type DeleteOriginalError struct {
	Err error
}

func (e *DeleteOriginalError) Error() string {
	return fmt.Sprintf("could not delete original after copy: %v", e.Err)
}

func (e *DeleteOriginalError) Unwrap() error { return e.Err }
