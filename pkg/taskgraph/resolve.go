package taskgraph

type visitState uint8

const (
	visitNew visitState = iota
	visitActive
	visitDone
)

// Resolve computes the run order for target: a post-order depth-first walk
// over prerequisites, so every transitive prerequisite appears in the plan
// exactly once and before every task that depends on it. A task reachable
// through more than one branch keeps the position of its first completed
// resolution, which means the declared prerequisite order decides ties.
//
// Resolution has no side effects; a malformed graph is reported before any
// command runs.
func Resolve(graph Graph, target string) (Plan, error) {
	state := make(map[string]visitState, len(graph))
	stack := make([]string, 0, len(graph))
	plan := make(Plan, 0, len(graph))

	var visit func(name, referrer string) error
	visit = func(name, referrer string) error {
		task, ok := graph[name]
		if !ok {
			return &UnknownTaskError{Name: name, Referrer: referrer}
		}

		switch state[name] {
		case visitDone:
			return nil
		case visitActive:
			return &CycleError{Tasks: closeCycle(stack, name)}
		}

		state[name] = visitActive
		stack = append(stack, name)

		for _, dep := range task.Deps {
			if err := visit(dep, name); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		state[name] = visitDone
		plan = append(plan, name)
		return nil
	}

	if err := visit(target, ""); err != nil {
		return nil, err
	}

	return plan, nil
}

// closeCycle cuts the visit stack down to the cycle itself and closes the
// loop by repeating the re-encountered task.
func closeCycle(stack []string, name string) []string {
	start := 0
	for idx, entry := range stack {
		if entry == name {
			start = idx
			break
		}
	}

	cycle := make([]string, 0, len(stack)-start+1)
	cycle = append(cycle, stack[start:]...)
	return append(cycle, name)
}
