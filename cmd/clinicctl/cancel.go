package main

import (
	"github.com/spf13/cobra"

	"github.com/arnavshah/clinic-scheduler-api/pkg/cancellation"
	"github.com/arnavshah/clinic-scheduler-api/pkg/config"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
)

func newSelectCancelCmd(loadPolicy func() (config.Policy, error)) *cobra.Command {
	var (
		file          string
		preferFullDay bool
	)
	cmd := &cobra.Command{
		Use:   "select-cancel",
		Short: "Pick the next cancellation target",
		Long:  "Reads a JSON array of cancel candidates and prints the selected decision, or null when every candidate is protected or skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := loadPolicy()
			if err != nil {
				return err
			}
			var candidates []models.CancelCandidate
			if err := readJSON(file, cmd.InOrStdin(), &candidates); err != nil {
				return err
			}
			prefer := policy.PreferFullDay
			if cmd.Flags().Changed("prefer-full-day") {
				prefer = preferFullDay
			}
			return writeJSON(cmd.OutOrStdout(), cancellation.SelectCancelTarget(candidates, prefer))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "candidates JSON file, - for stdin")
	cmd.Flags().BoolVar(&preferFullDay, "prefer-full-day", true, "prefer candidates missing both blocks")
	return cmd
}
