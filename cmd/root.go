package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tanloong/phony/pkg/taskgraph"
)

var rootCmd = &cobra.Command{
	Use:   "phony [flags] [task ...] [NAME=VALUE ...]",
	Short: "Dependency-ordered runner for phony tasks",
	Long: `phony parses the first tasks.yml it finds (searching upwards from the
working directory) and runs the given tasks after their prerequisites.
Without a task file the builtin packaging workflow is used. Every task is
phony: it always runs when reached. NAME=VALUE arguments become environment
overrides for the executed commands.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, err := cmd.Flags().GetBool("dry")
		if err != nil {
			return err
		}

		taskFile, err := cmd.Flags().GetString("file")
		if err != nil {
			return err
		}

		chdir, err := cmd.Flags().GetString("chdir")
		if err != nil {
			return err
		}

		debug, err := cmd.Flags().GetBool("debug")
		if err != nil {
			return err
		}

		logger := zerolog.New(NewConsoleWriter())
		if !debug {
			logger = logger.Level(zerolog.InfoLevel)
		}

		ctx := taskgraph.WithLogger(context.Background(), &logger)

		if chdir != "" {
			if err := os.Chdir(chdir); err != nil {
				fail(&logger, err, "Failed to change into %s", chdir)
			}
		}

		wd, err := os.Getwd()
		if err != nil {
			fail(&logger, err, "Failed to retrieve the current working directory")
		}

		graph, defaultTask, err := loadGraph(wd, taskFile, &logger)
		if err != nil {
			fail(&logger, err, "Failed to load the task graph")
		}

		targets, overrides := splitArgs(args)
		if len(targets) == 0 && defaultTask != "" {
			targets = []string{defaultTask}
		}

		if len(targets) == 0 {
			listTasks(graph)
			return nil
		}

		opts := taskgraph.Options{
			Env:    overrides,
			DryRun: dryRun,
		}

		for _, name := range targets {
			plan, err := taskgraph.Resolve(graph, name)
			if err != nil {
				fail(&logger, err, "Cannot resolve task %s", name)
			}

			result, err := taskgraph.Execute(ctx, graph, plan, opts)
			if err != nil {
				fail(&logger, err, "Failed task %s", name)
			}

			logger.Debug().Msgf("Finished tasks: %s", strings.Join(result.Ran, ", "))
		}

		return nil
	},
}

// loadGraph loads the task graph from taskFile, or from the nearest
// tasks.yml when taskFile is empty. Without any task file the builtin
// packaging workflow is used, so the runner works out of the box.
func loadGraph(wd, taskFile string, logger *zerolog.Logger) (taskgraph.Graph, string, error) {
	if taskFile == "" {
		found, err := taskgraph.FindTaskFile(wd)
		if err != nil {
			if !eris.Is(err, os.ErrNotExist) {
				return nil, "", err
			}

			logger.Debug().Msgf("No %s found, falling back to the builtin tasks", taskgraph.TaskFileName)
			return taskgraph.DefaultGraph(), "", nil
		}

		taskFile = found
	}

	if rel, relErr := filepath.Rel(wd, taskFile); relErr == nil {
		taskFile = rel
	}

	file, err := taskgraph.LoadFile(taskFile)
	if err != nil {
		return nil, "", err
	}

	return file.Graph, file.Default, nil
}

// splitArgs separates task names from NAME=VALUE environment overrides.
func splitArgs(args []string) ([]string, map[string]string) {
	targets := make([]string, 0, len(args))
	overrides := make(map[string]string)

	for _, part := range args {
		pos := strings.Index(part, "=")
		if pos > 0 {
			overrides[part[:pos]] = part[pos+1:]
		} else {
			targets = append(targets, part)
		}
	}

	return targets, overrides
}

func listTasks(graph taskgraph.Graph) {
	fmt.Println("Available tasks:")

	maxNameLen := 0
	sortedNames := make([]string, 0, len(graph))
	for name, task := range graph {
		if task.Hidden {
			continue
		}

		if len(name) > maxNameLen {
			maxNameLen = len(name)
		}

		sortedNames = append(sortedNames, name)
	}

	sort.Strings(sortedNames)

	lineFmt := fmt.Sprintf(" * %%-%ds %%s\n", maxNameLen+3)
	for _, name := range sortedNames {
		fmt.Printf(lineFmt, name+":", graph[name].Desc)
	}
}

// fail logs the error and exits with the code mapped by exitCode. Command
// failures propagate the failing command's status; everything else is a
// configuration error.
func fail(logger *zerolog.Logger, err error, format string, args ...interface{}) {
	logger.Error().Err(err).Msgf(format, args...)
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	var cmdErr *taskgraph.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Status > 0 {
		return cmdErr.Status
	}

	return 2
}

func init() {
	rootCmd.Flags().BoolP("dry", "n", false, "dry run; only print the commands, don't execute anything")
	rootCmd.Flags().StringP("file", "f", "", "task file to use instead of searching for tasks.yml")
	rootCmd.Flags().StringP("chdir", "C", "", "change into this directory before doing anything")
	rootCmd.Flags().Bool("debug", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
