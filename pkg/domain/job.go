package domain

import (
	"path"
	"time"
)

// JobStatus is the terminal state of a Job.
type JobStatus string

const (
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
	JobSkipped   JobStatus = "skipped"
)

// Job is one compiler invocation of the build matrix.
type Job struct {
	Platform string `json:"platform"`
	Crate    string `json:"crate"`
	Feature  string `json:"feature"`
	ABI      string `json:"abi,omitempty"` // mobile only
}

// Mobile reports whether the job targets an Android ABI.
func (j Job) Mobile() bool {
	return j.ABI != ""
}

// DistPlatform is the platform section of the dist tree the job writes into.
func (j Job) DistPlatform() string {
	if j.ABI == "" {
		return j.Platform
	}
	return path.Join(j.Platform, j.ABI)
}

// Key uniquely identifies the job.
func (j Job) Key() string {
	return path.Join(j.DistPlatform(), j.Crate, j.Feature)
}

func (j Job) String() string {
	return j.Key()
}

// Selection is the user's request, before validation and expansion.
// Empty slices mean "use the catalog default".
type Selection struct {
	Platforms []string
	Crates    []string
	Features  []string
	ABIs      []string

	CheckOnly bool // build-check without producing artifacts
	Clean     bool // wipe the dist tree first
	SkipDeps  bool // do not resolve native prerequisites
}

// Warning records a requested combination that was dropped by policy.
type Warning struct {
	Job    Job
	Reason string
}

// Artifact is a packaged binary in the dist tree.
type Artifact struct {
	Job    Job    `json:"job"`
	Suffix string `json:"suffix"`
	Source string `json:"source"`
	Path   string `json:"path"`
	Size   int64  `json:"size"`
}

// JobOutcome is the terminal record of one executed job.
type JobOutcome struct {
	Job      Job
	Status   JobStatus
	Err      error
	Duration time.Duration
	Artifact *Artifact
}

// RunResult aggregates a matrix run.
type RunResult struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	Skipped   []Warning
	Outcomes  []JobOutcome
	Duration  time.Duration
}

// OK is true when no executed job failed.
func (r RunResult) OK() bool {
	return r.Failed == 0
}

// Artifacts returns the artifacts packaged during the run.
func (r RunResult) Artifacts() []Artifact {
	var out []Artifact
	for _, o := range r.Outcomes {
		if o.Artifact != nil {
			out = append(out, *o.Artifact)
		}
	}
	return out
}

// Record appends an outcome and updates the counters.
func (r *RunResult) Record(o JobOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Total++
	switch o.Status {
	case JobSucceeded:
		r.Succeeded++
	case JobFailed:
		r.Failed++
	}
}
