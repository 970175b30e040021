package mpvbuild_test

import (
	"fmt"
	"log"

	"github.com/aretw0/mpvbuild"
	"github.com/aretw0/mpvbuild/pkg/domain"
)

// Features can be named by their dist suffix.
func ExamplePlan() {
	jobs, _, err := mpvbuild.Plan(domain.Selection{
		Platforms: []string{"linux"},
		Crates:    []string{"plugin"},
		Features:  []string{"cpu", "remote"},
	})
	if err != nil {
		log.Fatal(err)
	}
	for _, j := range jobs {
		fmt.Println(j)
	}
	// Output:
	// linux/plugin/stt_local_cpu
	// linux/plugin/stt_remote_http
}

func ExamplePlan_dropped() {
	jobs, warnings, err := mpvbuild.Plan(domain.Selection{
		Platforms: []string{"android"},
		Crates:    []string{"server"},
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(jobs), "jobs")
	for _, w := range warnings {
		fmt.Printf("%s: %s\n", w.Job, w.Reason)
	}
	// Output:
	// 0 jobs
	// android/server: server is only built for the primary platform
}

func ExamplePlan_invalid() {
	_, _, err := mpvbuild.Plan(domain.Selection{Platforms: []string{"beos"}})
	fmt.Println(err != nil)
	// Output:
	// true
}
