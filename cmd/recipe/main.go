package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/dtroode/audiograb-server/internal/recipe"
)

var cli struct {
	Render RenderCmd `cmd:"" help:"Render the service Dockerfile."`
	Check  CheckCmd  `cmd:"" help:"Parse a Dockerfile and check the deployment invariants."`
	Plan   PlanCmd   `cmd:"" help:"Print the layer cache keys of a Dockerfile for a build context."`
}

// RenderCmd writes the project's recipe.
type RenderCmd struct {
	Out   string `short:"o" default:"Dockerfile" help:"Output path, '-' for stdout."`
	Port  int    `default:"8000" help:"Port the server binds and exposes."`
	User  string `default:"appuser" help:"Non-privileged runtime account."`
	Check bool   `default:"true" negatable:"" help:"Validate the rendered recipe."`
}

func (c *RenderCmd) Run() error {
	opts := recipe.DefaultOptions()
	opts.Port = c.Port
	opts.User = c.User
	rec := recipe.Default(opts)

	if c.Check {
		if err := recipe.Validate(rec); err != nil {
			return fmt.Errorf("rendered recipe is invalid: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := recipe.Render(&buf, rec); err != nil {
		return err
	}

	if c.Out == "-" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(c.Out, buf.Bytes(), 0o644)
}

// CheckCmd validates an existing Dockerfile.
type CheckCmd struct {
	File string `arg:"" default:"Dockerfile" type:"existingfile" help:"Dockerfile to check."`
}

func (c *CheckCmd) Run() error {
	rec, err := load(c.File)
	if err != nil {
		return err
	}
	if err := recipe.Validate(rec); err != nil {
		return err
	}
	fmt.Printf("%s: ok (%d stages)\n", c.File, len(rec.Stages))
	return nil
}

// PlanCmd prints cache keys per instruction.
type PlanCmd struct {
	File    string `arg:"" default:"Dockerfile" type:"existingfile" help:"Dockerfile to plan."`
	Context string `short:"c" default:"." type:"existingdir" help:"Build context directory."`
}

func (c *PlanCmd) Run() error {
	rec, err := load(c.File)
	if err != nil {
		return err
	}
	layers, err := recipe.Plan(rec, os.DirFS(c.Context))
	if err != nil {
		return err
	}
	for _, l := range layers {
		fmt.Printf("%d/%02d %s  %s\n", l.Stage, l.Index, l.Key.Encoded()[:12], l.Instruction.Text())
	}
	return nil
}

func load(path string) (recipe.Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to open recipe: %w", err)
	}
	defer f.Close()

	return recipe.Parse(f)
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("recipe"),
		kong.Description("Render and check the audiograb container recipe."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
