package bootstrap

import "errors"

var (
	ErrNotDirectory   = errors.New("path exists and is not a directory")
	ErrNotWritable    = errors.New("directory is not writable")
	ErrPrivileged     = errors.New("refusing to run with root privileges")
	ErrUnexpectedUser = errors.New("unexpected runtime user")
)
