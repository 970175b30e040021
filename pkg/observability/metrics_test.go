package observability

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveJob(t *testing.T) {
	m := NewMetrics()
	job := domain.Job{Platform: "android", Crate: "plugin", Feature: "stt_local_cpu", ABI: "arm64-v8a"}

	m.ObserveJob(job, domain.JobSucceeded, 3*time.Second)
	m.ObserveJob(job, domain.JobSucceeded, time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(),
		`mpvbuild_jobs_total{crate="plugin",feature="stt_local_cpu",platform="android/arm64-v8a",status="succeeded"} 2`)
	assert.Contains(t, rec.Body.String(), `mpvbuild_job_duration_seconds_count{crate="plugin",platform="android/arm64-v8a"} 2`)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveJob(domain.Job{}, domain.JobFailed, 0)
		m.ObserveNativeBuild("mpv", "arm64", OutcomeBuilt)
	})
}

func TestMetrics_TextfileAndHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveNativeBuild("ffmpeg", "arm64", OutcomeBuilt)
	m.ObserveNativeBuild("ffmpeg", "arm64", OutcomeSkipped)

	path := filepath.Join(t.TempDir(), "mpvbuild.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `mpvbuild_native_builds_total{arch="arm64",node="ffmpeg",outcome="built"} 1`)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "mpvbuild_native_builds_total"))
}
