package taskgraph

// Task describes a single phony target. It is always executed when reached;
// there is no notion of up-to-date outputs.
type Task struct {
	Name   string
	Desc   string
	Deps   []string
	Cmds   []string
	Env    map[string]string
	Hidden bool
}

// Graph maps task names to their definitions. It is built once at startup
// and never mutated afterwards; every name referenced in a Deps list must be
// present as a key.
type Graph map[string]*Task

// Plan is the linear, dependency-respecting order in which tasks will run.
// Each task appears at most once, after all of its prerequisites.
type Plan []string

// Result describes a fully successful run.
type Result struct {
	// Ran lists the executed tasks in run order.
	Ran []string
}
