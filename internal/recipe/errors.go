package recipe

import "errors"

var (
	ErrEmptyRecipe           = errors.New("recipe has no stages")
	ErrInstructionBeforeFrom = errors.New("instruction before first FROM")
	ErrSourceNotFound        = errors.New("copy source not found in build context")
	ErrUnknownStage          = errors.New("copy references unknown stage")

	// Validation rules.
	ErrInstallAfterSourceCopy = errors.New("dependency install runs after a source copy")
	ErrManifestNotCopied      = errors.New("dependency install runs before its manifest is copied")
	ErrMissingUser            = errors.New("final stage does not drop privileges")
	ErrRootUser               = errors.New("final stage runs as root")
	ErrMissingExpose          = errors.New("final stage exposes no port")
	ErrMissingLaunch          = errors.New("final stage has no CMD or ENTRYPOINT")
	ErrNonIdempotentMkdir     = errors.New("mkdir without -p is not idempotent")
)
