package cli

import (
	"bytes"
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relcut/relcut/internal/buildinfo"
)

func TestVersionCmdRegistration(t *testing.T) {
	t.Parallel()

	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "version" {
			found = true
			break
		}
	}
	assert.True(t, found, "version command should be registered")
}

func TestPrintPlainVersion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printPlainVersion(&buf)

	out := buf.String()
	assert.Contains(t, out, "relcut "+buildinfo.Version)
	assert.Contains(t, out, "commit: "+buildinfo.Commit)
	assert.Contains(t, out, "built: "+buildinfo.BuildDate)
	assert.Contains(t, out, "go: "+runtime.Version())
	assert.Contains(t, out, fmt.Sprintf("platform: %s/%s", runtime.GOOS, runtime.GOARCH))
}

func TestPrintPrettyVersion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printPrettyVersion(&buf)

	out := buf.String()
	assert.Contains(t, out, "relcut")
	assert.Contains(t, out, "Commit")
	assert.Contains(t, out, "Platform")
	assert.Contains(t, out, runtime.Version())
}

func TestTruncateCommit(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		commit string
		want   string
	}{
		"full sha": {
			commit: "0123456789abcdef0123456789abcdef01234567",
			want:   "01234567",
		},
		"short value untouched": {
			commit: "abc123",
			want:   "abc123",
		},
		"unknown untouched": {
			commit: "unknown",
			want:   "unknown",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, truncateCommit(tt.commit))
		})
	}
}
