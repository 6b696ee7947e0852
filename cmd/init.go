package cmd

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/tanloong/phony/pkg/taskgraph"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter tasks.yml",
	Long: `Writes a tasks.yml with the packaging workflow tasks (clean, build,
release, install, test, lint, refresh) into the current directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}

		if !force {
			_, err := os.Stat(taskgraph.TaskFileName)
			if err == nil {
				return eris.Errorf("%s already exists, pass --force to overwrite it", taskgraph.TaskFileName)
			}
			if !eris.Is(err, os.ErrNotExist) {
				return eris.Wrapf(err, "failed to check %s", taskgraph.TaskFileName)
			}
		}

		err = os.WriteFile(taskgraph.TaskFileName, taskgraph.Scaffold(), os.FileMode(0o660))
		if err != nil {
			return eris.Wrapf(err, "failed to write %s", taskgraph.TaskFileName)
		}

		fmt.Printf("Wrote %s\n", taskgraph.TaskFileName)
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing task file")
	rootCmd.AddCommand(initCmd)
}
