// Package bootstrap prepares the runtime environment before the server listens:
// it creates the writable directories and verifies the process dropped root.
package bootstrap

import (
	"fmt"

	"github.com/moby/sys/user"

	"github.com/dtroode/audiograb-server/internal/logger"
)

// Options describe the expected runtime environment.
type Options struct {
	Root         string
	Dirs         []string
	ExpectedUser string
	AllowRoot    bool
}

// Result is the prepared environment.
type Result struct {
	Dirs     []Dir
	Identity Identity
}

// Bootstrapper runs the bootstrap sequence.
type Bootstrapper struct {
	lookup LookupFunc
	ids    func() (int, int)
	logger *logger.Logger
}

// New creates a Bootstrapper reading identities from the system passwd database.
func New(logger *logger.Logger) *Bootstrapper {
	return &Bootstrapper{
		lookup: user.LookupUid,
		ids:    currentIDs,
		logger: logger,
	}
}

// Run checks the identity first, then creates the directories and checks they are writable.
// Any failure is fatal for startup.
func (b *Bootstrapper) Run(opts Options) (Result, error) {
	euid, egid := b.ids()
	id := ResolveIdentity(b.lookup, euid, egid)
	if err := CheckIdentity(id, opts.ExpectedUser, opts.AllowRoot); err != nil {
		return Result{}, err
	}
	if id.IsRoot() {
		b.logger.Warn("Bootstrap: running as root, allowed by configuration")
	}

	dirs, err := EnsureDirs(opts.Root, opts.Dirs...)
	if err != nil {
		return Result{}, fmt.Errorf("failed to prepare directories: %w", err)
	}

	for _, d := range dirs {
		if err := CheckWritable(d.Path); err != nil {
			return Result{}, err
		}
		if d.Created {
			b.logger.Info("Bootstrap: created directory", "path", d.Path)
		}
	}

	b.logger.Info("Bootstrap: runtime ready", "uid", id.UID, "user", id.Name, "dirs", len(dirs))

	return Result{Dirs: dirs, Identity: id}, nil
}
