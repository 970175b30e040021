package http

import (
	"github.com/aretw0/mpvbuild/internal/packager"
	"github.com/prometheus/client_golang/prometheus"
)

// DistCollector reports the current content of a dist tree at scrape time.
type DistCollector struct {
	distRoot string
	files    *prometheus.Desc
	bytes    *prometheus.Desc
}

var _ prometheus.Collector = (*DistCollector)(nil)

// NewDistCollector creates a collector for distRoot.
func NewDistCollector(distRoot string) *DistCollector {
	return &DistCollector{
		distRoot: distRoot,
		files: prometheus.NewDesc("mpvbuild_dist_artifacts",
			"Artifacts present in the dist tree.", []string{"platform", "crate"}, nil),
		bytes: prometheus.NewDesc("mpvbuild_dist_bytes",
			"Total size of the artifacts present in the dist tree.", []string{"platform", "crate"}, nil),
	}
}

func (c *DistCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.files
	ch <- c.bytes
}

func (c *DistCollector) Collect(ch chan<- prometheus.Metric) {
	m, err := packager.GenerateManifest(c.distRoot)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.files, err)
		return
	}
	for _, s := range m.Sections {
		var size int64
		for _, f := range s.Files {
			size += f.Size
		}
		ch <- prometheus.MustNewConstMetric(c.files, prometheus.GaugeValue, float64(len(s.Files)), s.Platform, s.Crate)
		ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.GaugeValue, float64(size), s.Platform, s.Crate)
	}
}
