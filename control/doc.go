// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration loading, runtime metrics and debug introspection for the
// message buffer pool.
//
// Provides:
//   - Layered configuration (defaults, YAML file, MESHBUF_ environment, flags)
//   - A mutex-protected metrics registry fed by pool snapshots
//   - A Prometheus collector exporting the registry
//   - Named debug probes for state dumps
//
// The pool itself is single-goroutine; this package is the only hand-off
// point to observers running elsewhere.
package control
