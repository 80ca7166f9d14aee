package main

import (
	"github.com/spf13/cobra"

	"github.com/arnavshah/clinic-scheduler-api/pkg/config"
	"github.com/arnavshah/clinic-scheduler-api/pkg/handlers"
	"github.com/arnavshah/clinic-scheduler-api/pkg/logger"
	"github.com/arnavshah/clinic-scheduler-api/pkg/scheduler"
)

func newGenerateCmd(loadPolicy func() (config.Policy, error)) *cobra.Command {
	var (
		file string
		date string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one day's schedule",
		Long:  "Reads a schedule request ({date, exceptions, data, approved_subs}) and prints the engine result as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := loadPolicy()
			if err != nil {
				return err
			}
			var req handlers.ScheduleRequest
			if err := readJSON(file, cmd.InOrStdin(), &req); err != nil {
				return err
			}
			if date != "" {
				req.Date = date
			}
			in, err := req.Input()
			if err != nil {
				return err
			}
			res := scheduler.NewScheduler(policy, logger.NewWithWriter(cmd.ErrOrStderr(), "clinicctl")).GenerateDailySchedule(in)
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"date":        req.Date,
				"result":      res,
				"finalizable": res.Finalizable(),
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "request JSON file, - for stdin")
	cmd.Flags().StringVar(&date, "date", "", "override the request date (YYYY-MM-DD)")
	return cmd
}
