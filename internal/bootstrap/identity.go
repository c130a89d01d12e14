package bootstrap

import (
	"fmt"
	"os"

	"github.com/moby/sys/user"
)

// Identity is the effective account of the running process.
type Identity struct {
	UID  int
	GID  int
	Name string
	Home string
}

// IsRoot reports whether the identity holds administrative privileges.
func (i Identity) IsRoot() bool {
	return i.UID == 0
}

// LookupFunc resolves a uid to a passwd entry.
type LookupFunc func(uid int) (user.User, error)

// ResolveIdentity returns the effective identity. When the uid has no passwd
// entry (arbitrary uids assigned by an orchestrator) only the ids are filled.
func ResolveIdentity(lookup LookupFunc, euid, egid int) Identity {
	id := Identity{UID: euid, GID: egid}
	u, err := lookup(euid)
	if err != nil {
		return id
	}
	id.Name = u.Name
	id.Home = u.Home
	return id
}

// CheckIdentity enforces the privilege constraints on id.
// An empty expected name accepts any non-root account.
func CheckIdentity(id Identity, expected string, allowRoot bool) error {
	if id.IsRoot() && !allowRoot {
		return fmt.Errorf("%w: uid %d", ErrPrivileged, id.UID)
	}
	if expected != "" && id.Name != expected && !(id.IsRoot() && allowRoot) {
		return fmt.Errorf("%w: running as %q (uid %d), expected %q", ErrUnexpectedUser, id.Name, id.UID, expected)
	}
	return nil
}

func currentIDs() (int, int) {
	return os.Geteuid(), os.Getegid()
}
