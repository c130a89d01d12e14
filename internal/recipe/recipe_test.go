package recipe

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_ParseRoundTrip(t *testing.T) {
	t.Parallel()

	want := Default(DefaultOptions())

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, want))

	got, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, got.Stages, len(want.Stages))

	for si := range want.Stages {
		assert.Equal(t, want.Stages[si].Name, got.Stages[si].Name)
		assert.Equal(t, want.Stages[si].From, got.Stages[si].From)
		require.Len(t, got.Stages[si].Instructions, len(want.Stages[si].Instructions))
		for ii, ins := range got.Stages[si].Instructions {
			assert.Positive(t, ins.Line)
			ins.Line = 0
			assert.Equal(t, want.Stages[si].Instructions[ii], ins, "stage %d instruction %d", si, ii)
		}
	}
}

func TestRender_Default(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Default(DefaultOptions())))
	out := buf.String()

	assert.Contains(t, out, "FROM golang:1.24-bookworm AS build\n")
	assert.Contains(t, out, "FROM python:3.12-slim\n")
	assert.Contains(t, out, "apt-get install -y --no-install-recommends ffmpeg git")
	assert.Contains(t, out, "RUN mkdir -p download static\n")
	assert.Contains(t, out, `adduser --disabled-password --gecos "" appuser`)
	assert.Contains(t, out, "USER appuser\n")
	assert.Contains(t, out, "EXPOSE 8000\n")
	assert.Contains(t, out, `CMD ["/app/audiograb", "--host", "0.0.0.0", "--port", "8000"]`)

	// Manifest install precedes the application copy.
	assert.Less(t, strings.Index(out, "pip install"), strings.Index(out, "COPY --from=build"))
	assert.Less(t, strings.Index(out, "go mod download"), strings.Index(out, "COPY . ."))
}

func TestRender_Empty(t *testing.T) {
	t.Parallel()

	err := Render(&bytes.Buffer{}, Recipe{})
	assert.ErrorIs(t, err, ErrEmptyRecipe)
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("global args and env pairs", func(t *testing.T) {
		t.Parallel()

		src := "ARG BASE=python:3.12-slim\nFROM ${BASE}\nENV A=1 B=two\nUSER app\n"
		rec, err := Parse(strings.NewReader(src))
		require.NoError(t, err)
		require.Len(t, rec.Stages, 1)

		ins := rec.Stages[0].Instructions
		require.Len(t, ins, 2)
		assert.Equal(t, CmdEnv, ins[0].Command)
		assert.Equal(t, []string{"A=1", "B=two"}, ins[0].Args)
		assert.Equal(t, 3, ins[0].Line)
	})

	t.Run("multiple env pairs and legacy form", func(t *testing.T) {
		t.Parallel()

		src := "FROM x\nENV APP_ROOT=/app RUNTIME_USER=appuser\nENV LEGACY some value\n"
		rec, err := Parse(strings.NewReader(src))
		require.NoError(t, err)

		ins := rec.Stages[0].Instructions
		require.Len(t, ins, 2)
		assert.Equal(t, []string{"APP_ROOT=/app", "RUNTIME_USER=appuser"}, ins[0].Args)
		assert.Equal(t, []string{"LEGACY=some value"}, ins[1].Args)
	})

	t.Run("instruction before from", func(t *testing.T) {
		t.Parallel()

		_, err := Parse(strings.NewReader("RUN true\nFROM scratch\n"))
		assert.ErrorIs(t, err, ErrInstructionBeforeFrom)
	})

	t.Run("malformed from", func(t *testing.T) {
		t.Parallel()

		_, err := Parse(strings.NewReader("FROM a b\n"))
		assert.Error(t, err)
	})

	t.Run("no instructions", func(t *testing.T) {
		t.Parallel()

		_, err := Parse(strings.NewReader("# only a comment\n"))
		assert.Error(t, err)
	})
}

func TestValidate_Default(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Validate(Default(DefaultOptions())))
}

func TestValidate_Violations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []error
	}{
		{
			name: "install after source copy",
			src: `FROM python:3.12-slim
COPY . .
RUN pip install -r requirements.txt
USER app
EXPOSE 8000
CMD ["app"]
`,
			want: []error{ErrInstallAfterSourceCopy},
		},
		{
			name: "install before manifest copy",
			src: `FROM python:3.12-slim
RUN pip install -r requirements.txt
COPY requirements.txt .
USER app
EXPOSE 8000
CMD ["app"]
`,
			want: []error{ErrManifestNotCopied},
		},
		{
			name: "runs as root",
			src: `FROM python:3.12-slim
COPY requirements.txt .
RUN pip install -r requirements.txt
COPY . .
USER app
USER root:root
EXPOSE 8000
CMD ["app"]
`,
			want: []error{ErrRootUser},
		},
		{
			name: "no privilege drop, port or launch",
			src: `FROM python:3.12-slim
COPY . .
`,
			want: []error{ErrMissingUser, ErrMissingExpose, ErrMissingLaunch},
		},
		{
			name: "mkdir without parents",
			src: `FROM python:3.12-slim
RUN mkdir download && mkdir -p static
USER app
EXPOSE 8000
CMD ["app"]
`,
			want: []error{ErrNonIdempotentMkdir},
		},
		{
			name: "source directory copied before install",
			src: `FROM python:3.12-slim
COPY requirements.txt .
COPY app app
RUN pip install -r requirements.txt
USER app
EXPOSE 8000
CMD ["app"]
`,
			want: []error{ErrInstallAfterSourceCopy},
		},
		{
			name: "unrelated file copied with manifest",
			src: `FROM golang:1.24
COPY go.mod go.sum main.go ./
RUN go mod download
USER 1000
EXPOSE 8000
CMD ["app"]
`,
			want: []error{ErrInstallAfterSourceCopy},
		},
		{
			name: "go mod download after full copy in build stage",
			src: `FROM golang:1.24 AS build
COPY . .
RUN go mod download
FROM scratch
COPY --from=build /out/app /app
USER 1000
EXPOSE 8000
ENTRYPOINT ["/app"]
`,
			want: []error{ErrInstallAfterSourceCopy},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, err := Parse(strings.NewReader(tt.src))
			require.NoError(t, err)

			err = Validate(rec)
			require.Error(t, err)
			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}

			var v *Violation
			assert.ErrorAs(t, err, &v)
		})
	}
}

func contextFS() fstest.MapFS {
	return fstest.MapFS{
		"go.mod":                  {Data: []byte("module example\n")},
		"go.sum":                  {Data: []byte("")},
		"cmd/audiograb/main.go":   {Data: []byte("package main\n")},
		"requirements.txt":        {Data: []byte("yt-dlp==2024.12.13\n")},
		"static/index.html":       {Data: []byte("<html></html>")},
		"internal/api/handler.go": {Data: []byte("package api\n")},
	}
}

// keyOf returns the key of the first layer whose instruction text contains substr.
func keyOf(t *testing.T, layers []Layer, substr string) string {
	t.Helper()
	for _, l := range layers {
		if strings.Contains(l.Instruction.Text(), substr) {
			return l.Key.String()
		}
	}
	t.Fatalf("no layer matching %q", substr)
	return ""
}

func TestPlan_DependencyLayersIgnoreSourceChanges(t *testing.T) {
	t.Parallel()

	rec := Default(DefaultOptions())

	base, err := Plan(rec, contextFS())
	require.NoError(t, err)
	require.Len(t, base, len(rec.Stages[0].Instructions)+len(rec.Stages[1].Instructions))

	changedSource := contextFS()
	changedSource["internal/api/handler.go"] = &fstest.MapFile{Data: []byte("package api\n\nfunc X() {}\n")}
	afterSource, err := Plan(rec, changedSource)
	require.NoError(t, err)

	assert.Equal(t, keyOf(t, base, "go mod download"), keyOf(t, afterSource, "go mod download"))
	assert.Equal(t, keyOf(t, base, "pip install"), keyOf(t, afterSource, "pip install"))
	assert.NotEqual(t, keyOf(t, base, "COPY . ."), keyOf(t, afterSource, "COPY . ."))
	assert.NotEqual(t, keyOf(t, base, "COPY --from=build"), keyOf(t, afterSource, "COPY --from=build"))
	assert.NotEqual(t, base[len(base)-1].Key, afterSource[len(afterSource)-1].Key)

	changedManifest := contextFS()
	changedManifest["requirements.txt"] = &fstest.MapFile{Data: []byte("yt-dlp==2025.01.15\n")}
	afterManifest, err := Plan(rec, changedManifest)
	require.NoError(t, err)

	assert.Equal(t, keyOf(t, base, "apt-get install"), keyOf(t, afterManifest, "apt-get install"))
	assert.NotEqual(t, keyOf(t, base, "pip install"), keyOf(t, afterManifest, "pip install"))
	assert.Equal(t, keyOf(t, base, "go mod download"), keyOf(t, afterManifest, "go mod download"))

	changedModule := contextFS()
	changedModule["go.mod"] = &fstest.MapFile{Data: []byte("module example\n\ngo 1.24\n")}
	afterModule, err := Plan(rec, changedModule)
	require.NoError(t, err)

	assert.NotEqual(t, keyOf(t, base, "go mod download"), keyOf(t, afterModule, "go mod download"))
	assert.Equal(t, keyOf(t, base, "pip install"), keyOf(t, afterModule, "pip install"))
}

// A recipe passes Validate exactly when editing application source leaves the
// dependency install layer cached.
func TestValidate_AgreesWithPlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		valid bool
	}{
		{
			name: "manifest first",
			src: `FROM python:3.12-slim
COPY requirements.txt .
RUN pip install -r requirements.txt
COPY app app
USER app
EXPOSE 8000
CMD ["app"]
`,
			valid: true,
		},
		{
			name: "source directory first",
			src: `FROM python:3.12-slim
COPY app app
COPY requirements.txt .
RUN pip install -r requirements.txt
USER app
EXPOSE 8000
CMD ["app"]
`,
		},
	}

	ctx := fstest.MapFS{
		"requirements.txt": {Data: []byte("yt-dlp\n")},
		"app/app.py":       {Data: []byte("print(1)\n")},
	}
	edited := fstest.MapFS{
		"requirements.txt": ctx["requirements.txt"],
		"app/app.py":       {Data: []byte("print(2)\n")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, err := Parse(strings.NewReader(tt.src))
			require.NoError(t, err)

			before, err := Plan(rec, ctx)
			require.NoError(t, err)
			after, err := Plan(rec, edited)
			require.NoError(t, err)

			stable := keyOf(t, before, "pip install") == keyOf(t, after, "pip install")
			assert.Equal(t, tt.valid, stable)
			assert.Equal(t, tt.valid, Validate(rec) == nil)
		})
	}
}

func TestPlan_HonoursIgnoreFile(t *testing.T) {
	t.Parallel()

	base := contextFS()
	base[".dockerignore"] = &fstest.MapFile{Data: []byte("# local state\n*.md\ndownload\n!download/keep.txt\n")}
	base["README.md"] = &fstest.MapFile{Data: []byte("v1")}
	base["download/a.mp3"] = &fstest.MapFile{Data: []byte("a")}
	base["download/keep.txt"] = &fstest.MapFile{Data: []byte("keep")}

	rec := Default(DefaultOptions())
	want, err := Plan(rec, base)
	require.NoError(t, err)

	ignoredEdit := contextFS()
	for k, v := range base {
		ignoredEdit[k] = v
	}
	ignoredEdit["README.md"] = &fstest.MapFile{Data: []byte("v2")}
	ignoredEdit["download/b.mp3"] = &fstest.MapFile{Data: []byte("b")}

	got, err := Plan(rec, ignoredEdit)
	require.NoError(t, err)
	assert.Equal(t, keyOf(t, want, "COPY . ."), keyOf(t, got, "COPY . ."))

	reincluded := contextFS()
	for k, v := range base {
		reincluded[k] = v
	}
	reincluded["download/keep.txt"] = &fstest.MapFile{Data: []byte("changed")}

	got, err = Plan(rec, reincluded)
	require.NoError(t, err)
	assert.NotEqual(t, keyOf(t, want, "COPY . ."), keyOf(t, got, "COPY . ."))
}

func TestPlan_Deterministic(t *testing.T) {
	t.Parallel()

	rec := Default(DefaultOptions())
	a, err := Plan(rec, contextFS())
	require.NoError(t, err)
	b, err := Plan(rec, contextFS())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestPlan_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()

		ctx := contextFS()
		delete(ctx, "requirements.txt")
		_, err := Plan(Default(DefaultOptions()), ctx)
		assert.ErrorIs(t, err, ErrSourceNotFound)
	})

	t.Run("unknown stage", func(t *testing.T) {
		t.Parallel()

		rec := Recipe{Stages: []Stage{{
			From:         "scratch",
			Instructions: []Instruction{{Command: CmdCopy, Flags: []string{"--from=missing"}, Args: []string{"/a", "/b"}}},
		}}}
		_, err := Plan(rec, contextFS())
		assert.ErrorIs(t, err, ErrUnknownStage)
	})

	t.Run("external image source", func(t *testing.T) {
		t.Parallel()

		rec := Recipe{Stages: []Stage{{
			From:         "scratch",
			Instructions: []Instruction{{Command: CmdCopy, Flags: []string{"--from=busybox:1.36"}, Args: []string{"/bin/sh", "/sh"}}},
		}}}
		layers, err := Plan(rec, contextFS())
		require.NoError(t, err)
		assert.Len(t, layers, 1)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		_, err := Plan(Recipe{}, contextFS())
		assert.ErrorIs(t, err, ErrEmptyRecipe)
	})
}

func TestCheckedInDockerfileIsCurrent(t *testing.T) {
	t.Parallel()

	want, err := os.ReadFile(filepath.Join("..", "..", "Dockerfile"))
	require.NoError(t, err)

	var got bytes.Buffer
	require.NoError(t, Render(&got, Default(DefaultOptions())))

	assert.Equal(t, string(want), got.String(), "run `go run ./cmd/recipe render` to refresh the Dockerfile")
}
