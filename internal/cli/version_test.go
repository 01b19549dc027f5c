package cli

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// withVersion swaps the build info for one test.
func withVersion(t *testing.T, v, c, d string) {
	t.Helper()
	ov, oc, od := version, commit, date
	t.Cleanup(func() { SetVersionInfo(ov, oc, od) })
	SetVersionInfo(v, c, d)
}

func TestVersionOutput(t *testing.T) {
	withVersion(t, "1.2.3", "abc1234", "2025-01-08T12:00:00Z")

	var buf bytes.Buffer
	printVersion(&buf, false)
	output := buf.String()

	assert.Contains(t, output, "stripchart v1.2.3", "should show version with v prefix")
	assert.Contains(t, output, "commit: abc1234")
	assert.Contains(t, output, "built: 2025-01-08T12:00:00Z")
	assert.Contains(t, output, "go: "+runtime.Version())
	assert.Contains(t, output, "os/arch: "+runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionOutputShort(t *testing.T) {
	withVersion(t, "1.2.3", "none", "unknown")

	var buf bytes.Buffer
	printVersion(&buf, true)

	assert.Equal(t, "1.2.3", strings.TrimSpace(buf.String()))
}

func TestVersionOutputDev(t *testing.T) {
	withVersion(t, "dev", "none", "unknown")

	var buf bytes.Buffer
	printVersion(&buf, false)

	assert.Contains(t, buf.String(), "stripchart dev", "dev version should not have v prefix")
	assert.Equal(t, "dev", GetVersion())
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty string", input: "", want: ""},
		{name: "dev version", input: "dev", want: "dev"},
		{name: "adds prefix", input: "1.0.0", want: "v1.0.0"},
		{name: "keeps prefix", input: "v2.1.0", want: "v2.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVersion(tt.input))
		})
	}
}
