package taskgraph

import (
	"fmt"
	"strings"
)

// UnknownTaskError reports a task name that is not present in the graph,
// either requested directly or referenced as a prerequisite.
type UnknownTaskError struct {
	Name     string
	Referrer string
}

func (e *UnknownTaskError) Error() string {
	if e.Referrer != "" {
		return fmt.Sprintf("unknown task %s (required by %s)", e.Name, e.Referrer)
	}
	return fmt.Sprintf("unknown task %s", e.Name)
}

// CycleError reports a prerequisite cycle. Tasks holds the names in encounter
// order, closed with the task that was reached a second time.
type CycleError struct {
	Tasks []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Tasks, " -> "))
}

// CommandError reports the first command of a run that exited with a non-zero
// status. Execution stops at that point; tasks that already finished stay
// finished, nothing is rolled back.
type CommandError struct {
	Task      string
	CmdIndex  int
	CmdText   string
	Status    int
	Completed []string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("task %s: command %d (%s) exited with status %d",
		e.Task, e.CmdIndex+1, e.CmdText, e.Status)
}
