package toolchain

import (
	"fmt"
	"sort"

	"github.com/aretw0/mpvbuild/pkg/domain"
)

// DesktopArch is the host architecture used for desktop jobs.
const DesktopArch = "desktop-x64"

var architectures = map[string]domain.Architecture{
	DesktopArch: {
		ID:         DesktopArch,
		HostTriple: "x86_64-linux-gnu",
		RustTarget: "x86_64-unknown-linux-gnu",
		CPUFamily:  "x86_64",
		CPU:        "x86_64",
		Processor:  "x86_64",
	},
	"arm64": {
		ID:          "arm64",
		ABI:         "arm64-v8a",
		ClangTriple: "aarch64-linux-android",
		HostTriple:  "aarch64-linux-android",
		RustTarget:  "aarch64-linux-android",
		CPUFamily:   "aarch64",
		CPU:         "armv8",
		Processor:   "aarch64",
		Mobile:      true,
	},
	"armv7": {
		ID:          "armv7",
		ABI:         "armeabi-v7a",
		ClangTriple: "armv7a-linux-androideabi",
		HostTriple:  "arm-linux-androideabi",
		RustTarget:  "armv7-linux-androideabi",
		CPUFamily:   "arm",
		CPU:         "armv7",
		Processor:   "armv7-a",
		Mobile:      true,
	},
	"x86": {
		ID:          "x86",
		ABI:         "x86",
		ClangTriple: "i686-linux-android",
		HostTriple:  "i686-linux-android",
		RustTarget:  "i686-linux-android",
		CPUFamily:   "x86",
		CPU:         "i686",
		Processor:   "i686",
		Mobile:      true,
	},
	"x86_64": {
		ID:          "x86_64",
		ABI:         "x86_64",
		ClangTriple: "x86_64-linux-android",
		HostTriple:  "x86_64-linux-android",
		RustTarget:  "x86_64-linux-android",
		CPUFamily:   "x86_64",
		CPU:         "x86_64",
		Processor:   "x86_64",
		Mobile:      true,
	},
}

// IDs lists the declared architecture identifiers, sorted.
func IDs() []string {
	ids := make([]string, 0, len(architectures))
	for id := range architectures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns the architecture declared under id.
func Lookup(id string) (domain.Architecture, error) {
	arch, ok := architectures[id]
	if !ok {
		return domain.Architecture{}, fmt.Errorf("%w: %q (known: %v)", domain.ErrUnknownArchitecture, id, IDs())
	}
	return arch, nil
}

// ForABI returns the mobile architecture for an Android ABI name.
func ForABI(abi string) (domain.Architecture, error) {
	for _, arch := range architectures {
		if arch.Mobile && arch.ABI == abi {
			return arch, nil
		}
	}
	return domain.Architecture{}, fmt.Errorf("%w: no architecture for ABI %q", domain.ErrUnknownArchitecture, abi)
}
