package recipe

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Violation is a rule broken by a specific instruction of a recipe.
type Violation struct {
	Stage       int
	Line        int
	Instruction string
	Err         error
}

func (v *Violation) Error() string {
	if v.Line > 0 {
		return fmt.Sprintf("stage %d, line %d (%s): %v", v.Stage, v.Line, v.Instruction, v.Err)
	}
	return fmt.Sprintf("stage %d (%s): %v", v.Stage, v.Instruction, v.Err)
}

func (v *Violation) Unwrap() error {
	return v.Err
}

// installer recognises a dependency installation command, the manifest it
// reads and the lock files that may be copied alongside it.
type installer struct {
	prefix     string
	manifest   func(fields []string) string
	companions []string
}

var installers = []installer{
	{prefix: "pip install", manifest: requirementsFile},
	{prefix: "pip3 install", manifest: requirementsFile},
	{prefix: "go mod download", manifest: constant("go.mod"), companions: []string{"go.sum"}},
	{prefix: "npm ci", manifest: constant("package.json"), companions: []string{"package-lock.json", "npm-shrinkwrap.json"}},
	{prefix: "npm install", manifest: constant("package.json"), companions: []string{"package-lock.json", "npm-shrinkwrap.json"}},
	{prefix: "apt-get install", manifest: constant("")},
}

// reads reports whether src is one of the files the install depends on.
func (in installer) reads(src, manifest string) bool {
	base := path.Base(path.Clean(src))
	if manifest != "" && base == path.Base(manifest) {
		return true
	}
	for _, c := range in.companions {
		if base == c {
			return true
		}
	}
	return false
}

func constant(s string) func([]string) string {
	return func([]string) string { return s }
}

// requirementsFile returns the argument of -r/--requirement, or "" for plain package installs.
func requirementsFile(fields []string) string {
	for i, f := range fields {
		switch {
		case (f == "-r" || f == "--requirement") && i+1 < len(fields):
			return fields[i+1]
		case strings.HasPrefix(f, "--requirement="):
			return strings.TrimPrefix(f, "--requirement=")
		}
	}
	return ""
}

// Validate checks the invariants the image relies on:
//   - dependency installs follow their manifest copy and precede any other source copy,
//   - runtime directories are created idempotently,
//   - the final stage drops to a non-root user, exposes a port and declares a launch command.
//
// All violations are reported, joined.
func Validate(r Recipe) error {
	if len(r.Stages) == 0 {
		return ErrEmptyRecipe
	}

	var errs []error
	for i, stage := range r.Stages {
		errs = append(errs, validateStage(i, stage)...)
	}
	errs = append(errs, validateFinal(len(r.Stages)-1, r.Stages[len(r.Stages)-1])...)

	return errors.Join(errs...)
}

func validateStage(idx int, stage Stage) []error {
	var (
		errs    []error
		sources []string
	)

	for _, ins := range stage.Instructions {
		switch ins.Command {
		case CmdCopy, CmdAdd:
			if _, ok := ins.Flag("from"); ok || len(ins.Args) < 2 {
				continue
			}
			sources = append(sources, ins.Args[:len(ins.Args)-1]...)
		case CmdRun:
			for _, cmd := range shellCommands(ins) {
				fields := strings.Fields(cmd)
				if isNonIdempotentMkdir(fields) {
					errs = append(errs, violation(idx, ins, ErrNonIdempotentMkdir))
				}
				in, manifest, ok := matchInstaller(cmd, fields)
				if !ok {
					continue
				}
				if copiesSource(in, manifest, sources) {
					errs = append(errs, violation(idx, ins, ErrInstallAfterSourceCopy))
					continue
				}
				if manifest != "" && !copied(sources, manifest) {
					errs = append(errs, violation(idx, ins, ErrManifestNotCopied))
				}
			}
		}
	}

	return errs
}

// copiesSource reports whether any earlier copy brought in files the install
// does not read. Such a copy invalidates the install layer on every source edit.
func copiesSource(in installer, manifest string, sources []string) bool {
	for _, src := range sources {
		if isWholeContext(src) || !in.reads(src, manifest) {
			return true
		}
	}
	return false
}

func copied(sources []string, manifest string) bool {
	for _, src := range sources {
		if path.Base(path.Clean(src)) == path.Base(manifest) {
			return true
		}
	}
	return false
}

func validateFinal(idx int, stage Stage) []error {
	var (
		errs             []error
		user             *Instruction
		exposed, launch bool
	)

	for i := range stage.Instructions {
		ins := &stage.Instructions[i]
		switch ins.Command {
		case CmdUser:
			user = ins
		case CmdExpose:
			exposed = len(ins.Args) > 0
		case CmdCmd, CmdEntrypoint:
			launch = true
		}
	}

	switch {
	case user == nil:
		errs = append(errs, &Violation{Stage: idx, Instruction: CmdUser, Err: ErrMissingUser})
	case isRoot(user.Args):
		errs = append(errs, violation(idx, *user, ErrRootUser))
	}
	if !exposed {
		errs = append(errs, &Violation{Stage: idx, Instruction: CmdExpose, Err: ErrMissingExpose})
	}
	if !launch {
		errs = append(errs, &Violation{Stage: idx, Instruction: CmdCmd, Err: ErrMissingLaunch})
	}

	return errs
}

func violation(stage int, ins Instruction, err error) *Violation {
	return &Violation{Stage: stage, Line: ins.Line, Instruction: ins.Command, Err: err}
}

func isWholeContext(src string) bool {
	clean := path.Clean(src)
	return clean == "." || clean == "/" || strings.ContainsAny(path.Base(clean), "*?[")
}

func isRoot(args []string) bool {
	if len(args) == 0 {
		return true
	}
	name, _, _ := strings.Cut(args[0], ":")
	return name == "root" || name == "0"
}

func matchInstaller(cmd string, fields []string) (installer, string, bool) {
	normalized := strings.Join(fields, " ")
	for _, in := range installers {
		if strings.Contains(normalized, in.prefix) {
			return in, in.manifest(fields), true
		}
	}
	return installer{}, "", false
}

// shellCommands splits a RUN instruction into its individual shell commands.
func shellCommands(ins Instruction) []string {
	if ins.JSON {
		return []string{strings.Join(ins.Args, " ")}
	}
	script := strings.Join(ins.Args, " ")
	for _, sep := range []string{"&&", "||", ";", "|"} {
		script = strings.ReplaceAll(script, sep, "\n")
	}
	var out []string
	for _, c := range strings.Split(script, "\n") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func isNonIdempotentMkdir(fields []string) bool {
	if len(fields) == 0 || path.Base(fields[0]) != "mkdir" {
		return false
	}
	for _, f := range fields[1:] {
		if f == "--parents" {
			return false
		}
		if strings.HasPrefix(f, "-") && !strings.HasPrefix(f, "--") && strings.Contains(f, "p") {
			return false
		}
	}
	return true
}
