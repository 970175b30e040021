package toolchain

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/aretw0/mpvbuild/pkg/domain"
)

func systemName(tc domain.Toolchain) (meson, cmake string) {
	if tc.Arch.Mobile {
		return "android", "Android"
	}
	switch runtime.GOOS {
	case "darwin":
		return "darwin", "Darwin"
	case "windows":
		return "windows", "Windows"
	default:
		return "linux", "Linux"
	}
}

func mesonList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "'" + it + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// CrossFile renders the meson cross-compilation descriptor.
func CrossFile(tc domain.Toolchain) []byte {
	system, _ := systemName(tc)

	var sb strings.Builder
	sb.WriteString("[binaries]\n")
	fmt.Fprintf(&sb, "c = '%s'\n", tc.CC)
	fmt.Fprintf(&sb, "cpp = '%s'\n", tc.CXX)
	fmt.Fprintf(&sb, "ar = '%s'\n", tc.AR)
	fmt.Fprintf(&sb, "strip = '%s'\n", tc.Strip)
	fmt.Fprintf(&sb, "nm = '%s'\n", tc.NM)
	fmt.Fprintf(&sb, "pkg-config = '%s'\n", tc.PkgConfig)

	sb.WriteString("\n[built-in options]\n")
	fmt.Fprintf(&sb, "c_args = %s\n", mesonList(tc.CFlags))
	fmt.Fprintf(&sb, "cpp_args = %s\n", mesonList(tc.CFlags))
	fmt.Fprintf(&sb, "c_link_args = %s\n", mesonList(tc.LDFlags))
	fmt.Fprintf(&sb, "cpp_link_args = %s\n", mesonList(tc.LDFlags))

	sb.WriteString("\n[properties]\n")
	fmt.Fprintf(&sb, "pkg_config_libdir = '%s'\n", tc.PkgConfigPath)
	if tc.Sysroot != "" {
		fmt.Fprintf(&sb, "sys_root = '%s'\n", tc.Sysroot)
	}

	sb.WriteString("\n[host_machine]\n")
	fmt.Fprintf(&sb, "system = '%s'\n", system)
	fmt.Fprintf(&sb, "cpu_family = '%s'\n", tc.Arch.CPUFamily)
	fmt.Fprintf(&sb, "cpu = '%s'\n", tc.Arch.CPU)
	sb.WriteString("endian = 'little'\n")
	return []byte(sb.String())
}

// CMakeToolchainFile renders the CMake toolchain descriptor.
func CMakeToolchainFile(tc domain.Toolchain) []byte {
	_, system := systemName(tc)

	var sb strings.Builder
	fmt.Fprintf(&sb, "set(CMAKE_SYSTEM_NAME %s)\n", system)
	if tc.Arch.Mobile {
		fmt.Fprintf(&sb, "set(CMAKE_SYSTEM_VERSION %d)\n", tc.API)
		fmt.Fprintf(&sb, "set(CMAKE_ANDROID_ARCH_ABI %s)\n", tc.Arch.ABI)
		fmt.Fprintf(&sb, "set(CMAKE_ANDROID_NDK \"%s\")\n", tc.SDKRoot)
	}
	fmt.Fprintf(&sb, "set(CMAKE_SYSTEM_PROCESSOR %s)\n", tc.Arch.Processor)
	fmt.Fprintf(&sb, "set(CMAKE_C_COMPILER \"%s\")\n", tc.CC)
	fmt.Fprintf(&sb, "set(CMAKE_CXX_COMPILER \"%s\")\n", tc.CXX)
	fmt.Fprintf(&sb, "set(CMAKE_AR \"%s\")\n", tc.AR)
	fmt.Fprintf(&sb, "set(CMAKE_EXE_LINKER_FLAGS_INIT \"%s\")\n", strings.Join(tc.LDFlags, " "))
	fmt.Fprintf(&sb, "set(CMAKE_SHARED_LINKER_FLAGS_INIT \"%s\")\n", strings.Join(tc.LDFlags, " "))
	fmt.Fprintf(&sb, "set(CMAKE_FIND_ROOT_PATH \"%s\")\n", tc.Prefix)
	sb.WriteString("set(CMAKE_FIND_ROOT_PATH_MODE_PROGRAM NEVER)\n")
	sb.WriteString("set(CMAKE_FIND_ROOT_PATH_MODE_LIBRARY ONLY)\n")
	sb.WriteString("set(CMAKE_FIND_ROOT_PATH_MODE_INCLUDE ONLY)\n")
	sb.WriteString("set(CMAKE_FIND_ROOT_PATH_MODE_PACKAGE ONLY)\n")
	return []byte(sb.String())
}
