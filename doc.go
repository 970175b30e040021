/*
Package mpvbuild orchestrates the multi-target build of a speech-to-text
plugin for mpv and its companion server.

A run expands a selection of platforms, crates, features and Android ABIs
into a matrix of jobs. Each job invokes cargo for one target triple and
copies the compiled library or executable into a dist tree laid out as
dist/<platform>[/<abi>]/<crate>/, followed by a regenerated MANIFEST.md.

Android jobs additionally need mpv's native libraries. For those the tool
derives an isolated cross toolchain per architecture from the NDK, fetches
the sources, and builds the dependency graph (ffmpeg, freetype, fribidi,
harfbuzz, libunibreak, libass, libplacebo, mpv) into a per-architecture
prefix. Nodes whose stamp still matches are skipped.

# Usage

The command line lives in cmd/mpvbuild:

	mpvbuild --list
	mpvbuild --plan --platforms android --abis x86_64
	mpvbuild --platforms linux,android --features cpu,remote
	mpvbuild deps mpv --arch armv7
	mpvbuild graph --arch arm64
	mpvbuild serve --port 8080

Library consumers can expand a selection without running anything:

	jobs, warnings, err := mpvbuild.Plan(domain.Selection{Platforms: []string{"linux"}})
*/
package mpvbuild
