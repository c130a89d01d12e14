package recipe

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/moby/buildkit/frontend/dockerfile/parser"
)

const generatedHeader = "# Code generated by cmd/recipe. DO NOT EDIT.\n"

// Render writes r as a Dockerfile.
func Render(w io.Writer, r Recipe) error {
	if len(r.Stages) == 0 {
		return ErrEmptyRecipe
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(generatedHeader)

	for n, stage := range r.Stages {
		bw.WriteString("\n")
		if stage.Name != "" {
			fmt.Fprintf(bw, "FROM %s AS %s\n", stage.From, stage.Name)
		} else {
			fmt.Fprintf(bw, "FROM %s\n", stage.From)
		}
		for _, ins := range stage.Instructions {
			if ins.Command == CmdFrom {
				return fmt.Errorf("stage %d: nested FROM instruction", n)
			}
			bw.WriteString(ins.Text())
			bw.WriteString("\n")
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write recipe: %w", err)
	}
	return nil
}

// Parse reads a Dockerfile into a Recipe.
// Global ARG instructions before the first FROM are skipped.
func Parse(r io.Reader) (Recipe, error) {
	result, err := parser.Parse(r)
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to parse recipe: %w", err)
	}

	var rec Recipe
	for _, node := range result.AST.Children {
		cmd := strings.ToUpper(node.Value)
		args := nodeArgs(node)

		if cmd == CmdFrom {
			stage, err := parseFrom(args, node.StartLine)
			if err != nil {
				return Recipe{}, err
			}
			rec.Stages = append(rec.Stages, stage)
			continue
		}

		if len(rec.Stages) == 0 {
			if cmd == CmdArg {
				continue
			}
			return Recipe{}, fmt.Errorf("line %d: %w", node.StartLine, ErrInstructionBeforeFrom)
		}

		if cmd == CmdEnv {
			args = joinPairs(args)
		}

		last := &rec.Stages[len(rec.Stages)-1]
		last.Instructions = append(last.Instructions, Instruction{
			Command: cmd,
			Args:    args,
			Flags:   append([]string(nil), node.Flags...),
			JSON:    node.Attributes["json"],
			Line:    node.StartLine,
		})
	}

	if len(rec.Stages) == 0 {
		return Recipe{}, ErrEmptyRecipe
	}
	return rec, nil
}

func parseFrom(args []string, line int) (Stage, error) {
	switch {
	case len(args) == 1:
		return Stage{From: args[0]}, nil
	case len(args) == 3 && strings.EqualFold(args[1], "as"):
		return Stage{From: args[0], Name: args[2]}, nil
	default:
		return Stage{}, fmt.Errorf("line %d: malformed FROM %q", line, strings.Join(args, " "))
	}
}

func nodeArgs(node *parser.Node) []string {
	var args []string
	for n := node.Next; n != nil; n = n.Next {
		args = append(args, n.Value)
	}
	return args
}

// joinPairs folds the parser's key, value, separator triples of ENV back
// into key=value. The legacy "ENV key value" form has an empty separator.
func joinPairs(args []string) []string {
	out := make([]string, 0, len(args)/3)
	for i := 0; i+1 < len(args); i += 3 {
		out = append(out, args[i]+"="+args[i+1])
	}
	return out
}
