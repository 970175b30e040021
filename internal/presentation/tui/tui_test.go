package tui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/mpvbuild/internal/matrix"
	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintSummary(t *testing.T) {
	var r domain.RunResult
	r.Record(domain.JobOutcome{Job: domain.Job{Platform: "linux", Crate: "plugin", Feature: "stt_local_cpu"}, Status: domain.JobSucceeded, Duration: 2 * time.Second})
	r.Record(domain.JobOutcome{Job: domain.Job{Platform: "linux", Crate: "server", Feature: "stt_local_cpu"}, Status: domain.JobFailed, Err: errors.New("exit 101")})
	r.Skipped = []domain.Warning{{Job: domain.Job{Platform: "windows", Crate: "server"}, Reason: "primary only"}}

	var buf bytes.Buffer
	PrintSummary(&buf, r)
	out := buf.String()

	assert.Contains(t, out, "linux/plugin/stt_local_cpu")
	assert.Contains(t, out, "exit 101")
	assert.Contains(t, out, "primary only")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "total=2 succeeded=1 failed=1 skipped=1")
}

func TestPrintPlan(t *testing.T) {
	var buf bytes.Buffer
	PrintPlan(&buf, []domain.Job{{Platform: "android", ABI: "x86", Crate: "plugin", Feature: "stt_local_cpu"}}, nil)
	assert.Contains(t, buf.String(), "android/x86/plugin/stt_local_cpu")
	assert.Contains(t, buf.String(), "1 jobs, 0 skipped")
}

func TestWriteMarkdown_NotATerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, WriteMarkdown(&buf, "# Build Artifacts\n"))
	assert.Equal(t, "# Build Artifacts\n", buf.String())
}

func TestPrintSupported(t *testing.T) {
	c, err := matrix.ParseCatalog([]byte(`
platforms:
  - {name: desktop, rust_target: x86_64-unknown-linux-gnu, primary: true}
  - {name: mobile, mobile: true}
crates:
  - {name: plugin, package: mpv-stt-plugin, kind: cdylib}
features:
  - {name: stt_local_cpu, suffix: cpu, default: true}
  - {name: stt_local_cuda, suffix: cuda, accelerated: true}
abis:
  - {name: arm64-v8a, default: true}
  - {name: x86_64}
`))
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintSupported(&buf, c)

	assert.Equal(t, `platforms: desktop (primary), mobile (mobile)
crates:    plugin [mpv-stt-plugin]
features:  stt_local_cpu [cpu] (default), stt_local_cuda [cuda] (desktop only)
abis:      arm64-v8a, x86_64 (default: arm64-v8a)
`, buf.String())
}
