/*
Package domain contains the core model of the mpvbuild orchestrator.

It describes what is being built (architectures, native library recipes,
matrix jobs) and what came out of it (artifacts, run results), without any
I/O. Packages under internal/ and pkg/adapters operate on these values.

# Key Entities

  - Architecture: a target instruction set / ABI with its compiler triple.
  - Toolchain: the immutable compiler configuration derived for one Architecture.
  - Recipe: one native library and the recipes it requires.
  - Job: one (platform, crate, feature[, ABI]) cargo invocation.
  - RunResult: the aggregate outcome of a matrix run.
*/
package domain
