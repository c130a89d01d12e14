// Package recipe models the container build recipe of the service.
//
// A recipe is an ordered list of stages, each an ordered list of instructions.
// The package renders the project's recipe, parses existing Dockerfiles back
// into the model, checks the deployment invariants the image relies on, and
// computes the layer cache keys a layered builder would derive from it.
package recipe

import (
	"strconv"
	"strings"
)

// Instruction commands understood by the validator and planner.
const (
	CmdFrom       = "FROM"
	CmdRun        = "RUN"
	CmdCopy       = "COPY"
	CmdAdd        = "ADD"
	CmdWorkdir    = "WORKDIR"
	CmdEnv        = "ENV"
	CmdUser       = "USER"
	CmdExpose     = "EXPOSE"
	CmdCmd        = "CMD"
	CmdEntrypoint = "ENTRYPOINT"
	CmdArg        = "ARG"
)

// Instruction is a single recipe step.
type Instruction struct {
	Command string   // Upper-case instruction keyword.
	Args    []string // Positional arguments. RUN in shell form has a single argument.
	Flags   []string // Flags such as --from=build, kept verbatim.
	JSON    bool     // Exec (JSON array) form for RUN, CMD and ENTRYPOINT.
	Line    int      // Source line, zero for generated recipes.
}

// Flag returns the value of --name=value, if present.
func (i Instruction) Flag(name string) (string, bool) {
	prefix := "--" + name + "="
	for _, f := range i.Flags {
		if strings.HasPrefix(f, prefix) {
			return strings.TrimPrefix(f, prefix), true
		}
	}
	return "", false
}

// Text returns the canonical one-line form of the instruction.
// It is the instruction's contribution to its layer cache key.
func (i Instruction) Text() string {
	var sb strings.Builder
	sb.WriteString(i.Command)
	for _, f := range i.Flags {
		sb.WriteByte(' ')
		sb.WriteString(f)
	}
	if len(i.Args) == 0 {
		return sb.String()
	}
	sb.WriteByte(' ')
	if i.JSON {
		quoted := make([]string, len(i.Args))
		for n, a := range i.Args {
			quoted[n] = strconv.Quote(a)
		}
		sb.WriteString("[" + strings.Join(quoted, ", ") + "]")
		return sb.String()
	}
	sb.WriteString(strings.Join(i.Args, " "))
	return sb.String()
}

// Stage is a FROM block.
type Stage struct {
	Name         string
	From         string
	Instructions []Instruction
}

// Recipe is an ordered list of stages. The last stage produces the image.
type Recipe struct {
	Stages []Stage
}

// Final returns the stage that produces the image.
func (r Recipe) Final() (Stage, bool) {
	if len(r.Stages) == 0 {
		return Stage{}, false
	}
	return r.Stages[len(r.Stages)-1], true
}

// Stage looks a stage up by name.
func (r Recipe) Stage(name string) (int, bool) {
	for i, s := range r.Stages {
		if s.Name != "" && s.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Options parameterise the project's recipe.
type Options struct {
	BuilderImage   string   // Go toolchain image for the build stage.
	RuntimeImage   string   // Minimal Python runtime hosting yt-dlp.
	SystemPackages []string // Native tools installed with apt.
	Manifest       string   // Python dependency manifest.
	AppDir         string   // Application root inside the image.
	Binary         string   // Server binary name.
	Package        string   // Go package path of the server main.
	User           string   // Non-privileged runtime account.
	Dirs           []string // Writable runtime directories under AppDir.
	StaticDir      string   // Directory copied from the build context as static assets.
	Host           string   // Bind host.
	Port           int      // Bind port.
}

// DefaultOptions returns the options the repository's Dockerfile is rendered with.
func DefaultOptions() Options {
	return Options{
		BuilderImage:   "golang:1.24-bookworm",
		RuntimeImage:   "python:3.12-slim",
		SystemPackages: []string{"ffmpeg", "git"},
		Manifest:       "requirements.txt",
		AppDir:         "/app",
		Binary:         "audiograb",
		Package:        "./cmd/audiograb",
		User:           "appuser",
		Dirs:           []string{"download", "static"},
		StaticDir:      "static",
		Host:           "0.0.0.0",
		Port:           8000,
	}
}

// Default builds the service recipe: a Go build stage followed by a runtime
// stage that installs native tools, then Python dependencies from the
// manifest, then the application, and finally drops privileges.
func Default(opts Options) Recipe {
	port := strconv.Itoa(opts.Port)
	binPath := opts.AppDir + "/" + opts.Binary

	build := Stage{
		Name: "build",
		From: opts.BuilderImage,
		Instructions: []Instruction{
			{Command: CmdWorkdir, Args: []string{"/src"}},
			{Command: CmdCopy, Args: []string{"go.mod", "go.sum", "./"}},
			{Command: CmdRun, Args: []string{"go mod download"}},
			{Command: CmdCopy, Args: []string{".", "."}},
			{Command: CmdRun, Args: []string{"CGO_ENABLED=0 go build -trimpath -o /out/" + opts.Binary + " " + opts.Package}},
		},
	}

	runtime := Stage{
		From: opts.RuntimeImage,
		Instructions: []Instruction{
			{Command: CmdWorkdir, Args: []string{opts.AppDir}},
			{Command: CmdRun, Args: []string{"apt-get update && apt-get install -y --no-install-recommends " +
				strings.Join(opts.SystemPackages, " ") + " && rm -rf /var/lib/apt/lists/*"}},
			{Command: CmdCopy, Args: []string{opts.Manifest, "."}},
			{Command: CmdRun, Args: []string{"pip install --no-cache-dir -r " + opts.Manifest}},
			{Command: CmdCopy, Flags: []string{"--from=build"}, Args: []string{"/out/" + opts.Binary, binPath}},
			{Command: CmdCopy, Args: []string{opts.StaticDir, opts.StaticDir}},
			{Command: CmdRun, Args: []string{"mkdir -p " + strings.Join(opts.Dirs, " ")}},
			{Command: CmdRun, Args: []string{"adduser --disabled-password --gecos \"\" " + opts.User +
				" && chown -R " + opts.User + ":" + opts.User + " " + opts.AppDir}},
			{Command: CmdEnv, Args: []string{"APP_ROOT=" + opts.AppDir, "RUNTIME_USER=" + opts.User}},
			{Command: CmdUser, Args: []string{opts.User}},
			{Command: CmdExpose, Args: []string{port}},
			{Command: CmdCmd, JSON: true, Args: []string{binPath, "--host", opts.Host, "--port", port}},
		},
	}

	return Recipe{Stages: []Stage{build, runtime}}
}
