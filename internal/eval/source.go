package eval

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/stripchart/internal/hoststate"
)

// Source refreshes the field vector an equation reads with $N and ~N.
type Source interface {
	// Fields returns up to n values. Missing values are zero.
	Fields(ctx context.Context, n int) ([]float64, error)
	String() string
}

// Kind classifies a source spec by its leading character.
type Kind int

const (
	KindNone    Kind = iota
	KindFile         // path
	KindCommand      // |command
	KindStatus       // ?path
	KindHost         // =key
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindCommand:
		return "command"
	case KindStatus:
		return "status"
	case KindHost:
		return "host"
	}
	return "none"
}

// ClassifySource splits a source spec into its kind and target.
func ClassifySource(spec string) (Kind, string) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return KindNone, ""
	}
	switch s[0] {
	case '|':
		return KindCommand, strings.TrimSpace(s[1:])
	case '?':
		return KindStatus, strings.TrimSpace(s[1:])
	case '=':
		return KindHost, strings.TrimSpace(s[1:])
	}
	return KindFile, s
}

// SourceOptions tune how sources are opened.
type SourceOptions struct {
	Pattern string
	Hosts   *hoststate.Registry
}

// NewSource builds the Source for a spec. Only host-state specs can fail
// here, when the key is unknown. An empty spec yields nil.
func NewSource(spec string, opts SourceOptions) (Source, error) {
	kind, target := ClassifySource(spec)
	switch kind {
	case KindFile:
		return &fileSource{path: target, pattern: opts.Pattern}, nil
	case KindCommand:
		return &commandSource{command: target, pattern: opts.Pattern}, nil
	case KindStatus:
		return &statusSource{path: target}, nil
	case KindHost:
		reg := opts.Hosts
		if reg == nil {
			reg = hoststate.Default()
		}
		b, err := reg.Resolve(target)
		if err != nil {
			return nil, err
		}
		return &hostSource{bound: b}, nil
	}
	return nil, nil
}

type fileSource struct {
	path    string
	pattern string
}

func (s *fileSource) String() string { return s.path }

func (s *fileSource) Fields(_ context.Context, n int) ([]float64, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return make([]float64, n), err
	}
	defer f.Close()

	line, err := pickLine(f, s.pattern)
	return ParseFields(line, n), err
}

const commandWaitDelay = 250 * time.Millisecond

type commandSource struct {
	command string
	pattern string
}

func (s *commandSource) String() string { return "|" + s.command }

// Fields runs the command through sh -c and is killed when ctx ends. A
// non-zero exit status is not an error: whatever the command printed is
// still used.
func (s *commandSource) Fields(ctx context.Context, n int) ([]float64, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", s.command)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	// children of sh can hold stdout open after sh is killed
	cmd.WaitDelay = commandWaitDelay
	runErr := cmd.Run()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return make([]float64, n), fmt.Errorf("command %q: %w", s.command, ctxErr)
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return make([]float64, n), fmt.Errorf("command %q: %w", s.command, runErr)
		}
	}

	line, err := pickLine(&stdout, s.pattern)
	return ParseFields(line, n), err
}

type statusSource struct {
	path string
}

func (s *statusSource) String() string { return "?" + s.path }

func (s *statusSource) Fields(_ context.Context, n int) ([]float64, error) {
	out := make([]float64, n)
	if n > 0 {
		out[0] = float64(FileStatus(s.path))
	}
	return out, nil
}

type hostSource struct {
	bound *hoststate.Bound
}

func (s *hostSource) String() string { return "=" + s.bound.Key }

// strict marks sources whose read failures are errors rather than an
// all-zero vector.
func (s *hostSource) strict() bool { return true }

func (s *hostSource) Fields(ctx context.Context, n int) ([]float64, error) {
	out := make([]float64, n)
	vals, err := s.bound.Run(ctx)
	if err != nil {
		return out, err
	}
	copy(out, vals)
	return out, nil
}

// pickLine returns the first line, or with a pattern the first line that
// contains it. No match yields "".
func pickLine(r io.Reader, pattern string) (string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if pattern == "" || strings.Contains(line, pattern) {
			return line, nil
		}
	}
	return "", sc.Err()
}

// ParseFields splits a line on spaces, tabs and colons and converts the first
// n tokens by their leading numeric prefix. Tokens without one read as 0, as
// do missing tokens.
func ParseFields(line string, n int) []float64 {
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ':' || r == '\r' || r == '\n'
	})
	for i := 0; i < n && i < len(tokens); i++ {
		out[i] = leadingFloat(tokens[i])
	}
	return out
}

// leadingFloat parses the longest numeric prefix of s, 0 when there is none.
func leadingFloat(s string) float64 {
	for n := scanNumber(s); n > 0; n-- {
		v, err := strconv.ParseFloat(s[:n], 64)
		if err == nil || errors.Is(err, strconv.ErrRange) {
			return v
		}
	}
	return 0
}
