package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rileyhilliard/stripchart/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalCommand(t *testing.T) {
	src := writeSource(t, "3 4")

	tests := []struct {
		name string
		opts evalOptions
		want string
	}{
		{
			name: "constant",
			opts: evalOptions{Equation: "2 * (3 + 4)"},
			want: "14\n",
		},
		{
			name: "file fields",
			opts: evalOptions{Equation: "$1 + $2", Source: src},
			want: "7\n",
		},
		{
			name: "empty equation is the first field",
			opts: evalOptions{Equation: "", Source: src},
			want: "3\n",
		},
		{
			name: "host state",
			opts: evalOptions{Equation: "$1 / 2", Source: "=answer"},
			want: "21\n",
		},
		{
			name: "repeated constant",
			opts: evalOptions{Equation: "5", Count: 3},
			want: "5\n5\n5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if opts.Count == 0 {
				opts.Count = 1
			}
			opts.Interval = time.Millisecond
			opts.Hosts = fixedHosts()

			var buf bytes.Buffer
			require.NoError(t, evalCommand(context.Background(), &buf, opts))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestEvalCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts evalOptions
		code string
	}{
		{
			name: "syntax error",
			opts: evalOptions{Equation: "(1 + ", Count: 1, Interval: time.Second},
			code: errors.ErrEval,
		},
		{
			name: "unknown host key",
			opts: evalOptions{Equation: "$1", Source: "=nosuchkey", Count: 1, Interval: time.Second},
			code: errors.ErrSource,
		},
		{
			name: "zero count",
			opts: evalOptions{Equation: "1", Count: 0, Interval: time.Second},
			code: errors.ErrConfig,
		},
		{
			name: "zero interval",
			opts: evalOptions{Equation: "1", Count: 1},
			code: errors.ErrConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.Hosts = fixedHosts()

			var buf bytes.Buffer
			err := evalCommand(context.Background(), &buf, opts)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
			assert.Empty(t, buf.String())
		})
	}
}

func TestEvalCommand_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := evalCommand(ctx, &buf, evalOptions{
		Equation: "1",
		Count:    5,
		Interval: time.Hour,
		Hosts:    fixedHosts(),
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "1\n", buf.String())
}
