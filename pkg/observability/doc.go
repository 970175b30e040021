/*
Package observability exposes Prometheus metrics for matrix runs and native builds.

Metrics are registered on a private registry so several orchestrators (and
tests) can coexist in one process. The registry can be served over HTTP or
dumped to a node_exporter textfile at the end of a run.
*/
package observability
