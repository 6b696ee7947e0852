// Package taskgraph implements a small task runner in which every target is
// phony: tasks declare prerequisites and shell commands, resolution produces a
// dependency-respecting run order, and execution is strictly sequential with
// no freshness checks. The shell runtime is mvdan.cc/sh.
package taskgraph
