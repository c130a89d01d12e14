package recipe

import (
	_ "crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/moby/patternmatcher"
	"github.com/moby/patternmatcher/ignorefile"
	"github.com/opencontainers/go-digest"
)

// IgnoreFile is the build context file listing paths the builder never sends.
const IgnoreFile = ".dockerignore"

// Layer is one planned build step and the cache key a layered builder would
// assign to it. Two builds reuse a layer exactly when their keys are equal.
type Layer struct {
	Stage       int
	Index       int
	Instruction Instruction
	Key         digest.Digest
}

// Plan computes cache keys for every instruction of r against the build context.
//
// A key chains the parent layer's key, the instruction text and, for COPY and
// ADD, a digest of the copied content. COPY --from folds in the final key of the
// referenced stage. Changing an input therefore changes the key of the step that
// reads it and of every later step in the same stage, and nothing before it.
// Paths excluded by the context's .dockerignore do not contribute to any key.
func Plan(r Recipe, context fs.FS) ([]Layer, error) {
	if len(r.Stages) == 0 {
		return nil, ErrEmptyRecipe
	}

	ignore, err := loadIgnore(context)
	if err != nil {
		return nil, err
	}
	bc := &buildContext{FS: context, ignore: ignore}

	var (
		layers []Layer
		finals = make([]digest.Digest, len(r.Stages))
	)

	for si, stage := range r.Stages {
		parent := digest.FromString(CmdFrom + " " + stage.From)
		if idx, ok := r.Stage(stage.From); ok && idx < si {
			parent = finals[idx]
		}

		for ii, ins := range stage.Instructions {
			content, err := contentKey(r, si, finals, ins, bc)
			if err != nil {
				return nil, fmt.Errorf("stage %d, instruction %d (%s): %w", si, ii, ins.Command, err)
			}

			key := digest.FromString(parent.String() + "\n" + ins.Text() + "\n" + content)
			layers = append(layers, Layer{Stage: si, Index: ii, Instruction: ins, Key: key})
			parent = key
		}
		finals[si] = parent
	}

	return layers, nil
}

func contentKey(r Recipe, stage int, finals []digest.Digest, ins Instruction, context *buildContext) (string, error) {
	if ins.Command != CmdCopy && ins.Command != CmdAdd {
		return "", nil
	}

	if from, ok := ins.Flag("from"); ok {
		idx, found := r.Stage(from)
		if !found {
			if strings.ContainsAny(from, ":/") {
				// External image reference.
				return "image:" + from, nil
			}
			return "", fmt.Errorf("%w: %s", ErrUnknownStage, from)
		}
		if idx >= stage {
			return "", fmt.Errorf("%w: %s is not built before stage %d", ErrUnknownStage, from, stage)
		}
		return "stage:" + finals[idx].String(), nil
	}

	if len(ins.Args) < 2 {
		return "", nil
	}

	d := digest.Canonical.Digester()
	for _, src := range ins.Args[:len(ins.Args)-1] {
		if err := digestSource(d, context, src); err != nil {
			return "", err
		}
	}
	return d.Digest().String(), nil
}

func digestSource(d digest.Digester, context *buildContext, src string) error {
	name := contextPath(src)

	matches := []string{name}
	if strings.ContainsAny(name, "*?[") {
		var err error
		matches, err = fs.Glob(context, name)
		if err != nil {
			return fmt.Errorf("failed to expand %q: %w", src, err)
		}
		if len(matches) == 0 {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, src)
		}
	}

	for _, m := range matches {
		err := fs.WalkDir(context, m, func(p string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if p != "." {
				excluded, err := context.excluded(p)
				if err != nil {
					return err
				}
				if excluded && entry.IsDir() && !context.ignore.Exclusions() {
					// Nothing below an excluded directory can be re-included.
					return fs.SkipDir
				}
				if excluded {
					return nil
				}
			}
			if entry.IsDir() {
				return nil
			}
			fd, err := digestFile(context, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(d.Hash(), "%s %s\n", p, fd)
			return nil
		})
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, src)
		}
		if err != nil {
			return fmt.Errorf("failed to digest %q: %w", src, err)
		}
	}
	return nil
}

func digestFile(context fs.FS, name string) (digest.Digest, error) {
	f, err := context.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return digest.Canonical.FromReader(f)
}

// contextPath maps a COPY source to a path in the build context FS.
func contextPath(src string) string {
	p := path.Clean("/" + src)
	if p == "/" {
		return "."
	}
	return strings.TrimPrefix(p, "/")
}

// buildContext is the build context as the builder sees it.
type buildContext struct {
	fs.FS
	ignore *patternmatcher.PatternMatcher
}

func (c *buildContext) excluded(name string) (bool, error) {
	if c.ignore == nil {
		return false, nil
	}
	return c.ignore.MatchesOrParentMatches(name)
}

func loadIgnore(context fs.FS) (*patternmatcher.PatternMatcher, error) {
	f, err := context.Open(IgnoreFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", IgnoreFile, err)
	}
	defer f.Close()

	patterns, err := ignorefile.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFile, err)
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	pm, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", IgnoreFile, err)
	}
	return pm, nil
}
