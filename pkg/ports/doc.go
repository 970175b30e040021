/*
Package ports defines the driven ports (interfaces) of the mpvbuild orchestrator.

These interfaces decouple the build logic from the process, storage and
locking backends so that the graph builder and the matrix orchestrator can be
exercised with fakes in tests.

# Key Interfaces

  - CommandRunner: runs external build tools (cargo, meson, ninja, make, git).
  - StampStore: persists the inputs of the last successful native build.
  - DistributedLocker: serializes access to one architecture's install prefix across processes.
*/
package ports
