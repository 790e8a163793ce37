package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect and trigger background tasks",
}

var tasksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all background tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Retrieving tasks...")
		taskList, correlation, err := cli.ListTasks(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing tasks (correlation: %s): %w", correlation, err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "State", "Last Run", "Next Run", "Last Result"})

		for _, task := range taskList {
			state := "idle"
			if task.Running {
				state = color.BlueString("running")
			}

			lastRun := "never"
			if !task.LastRun.IsZero() {
				lastRun = time.Since(task.LastRun).Round(time.Second).String() + " ago"
			}

			nextRun := "n/a"
			if !task.NextRun.IsZero() {
				nextRun = "in " + time.Until(task.NextRun).Round(time.Second).String()
			}

			prefix := ""
			if task.LastResult == "success" {
				prefix = greenCheck + " "
			} else if task.LastResult != "" {
				prefix = redCross + " "
			}

			t.AppendRow(table.Row{
				bold(task.Name),
				state,
				lastRun,
				nextRun,
				prefix + truncate(task.LastResult, 50),
			})
		}

		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

var tasksTriggerCmd = &cobra.Command{
	Use:   "trigger [name]",
	Short: "Trigger a background task out of schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		correlation, err := cli.TriggerTask(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("triggering task (correlation: %s): %w", correlation, err)
		}

		fmt.Printf("%s Task %s triggered\n", greenCheck, bold(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksTriggerCmd)
}
