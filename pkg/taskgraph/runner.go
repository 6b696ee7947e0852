package taskgraph

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Options control how Execute runs the plan.
type Options struct {
	// Dir is the working directory for every command. Empty means the
	// process working directory.
	Dir string
	// Env holds extra environment overrides applied to every task, on top
	// of the inherited process environment. Task-level Env wins over these.
	Env map[string]string
	// DryRun prints each command without executing anything.
	DryRun bool
}

func taskEnviron(task *Task, opts Options) expand.Environ {
	envVars := os.Environ()

	for name, value := range opts.Env {
		envVars = append(envVars, fmt.Sprintf("%s=%s", name, value))
	}

	for name, value := range task.Env {
		envVars = append(envVars, fmt.Sprintf("%s=%s", name, value))
	}

	return expand.ListEnviron(envVars...)
}

// Execute runs the tasks in plan order, strictly sequentially. Each task's
// commands run in listed order through the shell interpreter; the first
// command that exits non-zero stops the whole run and is reported as a
// CommandError carrying the tasks that already finished.
func Execute(ctx context.Context, graph Graph, plan Plan, opts Options) (*Result, error) {
	parser := syntax.NewParser()
	printer := syntax.NewPrinter(syntax.Minify(true))
	completed := make([]string, 0, len(plan))

	for _, name := range plan {
		task, ok := graph[name]
		if !ok {
			return nil, &UnknownTaskError{Name: name}
		}

		if err := runTask(ctx, task, opts, parser, printer); err != nil {
			var cmdErr *CommandError
			if errors.As(err, &cmdErr) {
				cmdErr.Completed = append([]string(nil), completed...)
			}
			return nil, err
		}

		completed = append(completed, name)
	}

	return &Result{Ran: completed}, nil
}

func runTask(ctx context.Context, task *Task, opts Options, parser *syntax.Parser, printer *syntax.Printer) error {
	runner, err := interp.New(
		interp.Dir(opts.Dir),
		interp.Env(taskEnviron(task, opts)),
		interp.ExecHandlers(commandOverrides),
		interp.OpenHandler(openOverrides),
		interp.StdIO(nil, os.Stdout, os.Stderr),
		interp.Params("-e"),
	)
	if err != nil {
		return eris.Wrap(err, "failed to initialize the shell runner")
	}

	strBuffer := strings.Builder{}
	for idx, text := range task.Cmds {
		file, err := parser.Parse(strings.NewReader(text), fmt.Sprintf("%s:%d", task.Name, idx))
		if err != nil {
			return eris.Wrapf(err, "failed to parse command %s", text)
		}

		for _, stmt := range file.Stmts {
			strBuffer.Reset()
			printer.Print(&strBuffer, stmt)
			log(ctx).Info().
				Str("task", task.Name).
				Bool("command", true).
				Msg(strBuffer.String())

			if opts.DryRun {
				continue
			}

			if err := runner.Run(ctx, stmt); err != nil {
				if status, ok := interp.IsExitStatus(err); ok {
					return &CommandError{
						Task:     task.Name,
						CmdIndex: idx,
						CmdText:  text,
						Status:   int(status),
					}
				}
				return eris.Wrapf(err, "task %s: command %d (%s) aborted", task.Name, idx+1, text)
			}

			if runner.Exited() {
				// the command called exit without an error status;
				// skip the task's remaining commands
				return nil
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}
