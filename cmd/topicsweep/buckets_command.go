package main

import (
	"github.com/spf13/cobra"

	"topicsweep/internal/services"
	"topicsweep/internal/timebucket"
)

func newBucketsCommand(ctx *commandContext) *cobra.Command {
	var days int
	var format string

	cmd := &cobra.Command{
		Use:   "buckets EXPERIMENT_CONFIG",
		Short: "Show how an experiment's documents fall into time windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format, formatTable, formatJSON)
			if err != nil {
				return err
			}
			exp, err := ctx.loadExperiment(args[0])
			if err != nil {
				return err
			}
			if exp.TimeFilter == nil {
				return services.Wrap(services.ErrConfiguration, "cli", "buckets",
					exp.Name+" has no time_filter", nil)
			}
			if days < 1 && exp.DaysInInterval < 1 {
				return services.Wrap(services.ErrConfiguration, "cli", "buckets",
					"set days_in_interval in the experiment or pass --days", nil)
			}
			ds, err := ctx.loadDataset(exp)
			if err != nil {
				return err
			}
			buckets, err := timebucket.PartitionDocuments(ds.Documents, exp.BucketSpec(ds.Range, days))
			if err != nil {
				return err
			}
			if outFormat == formatJSON {
				if err := writeJSON(cmd, buckets.Windows); err != nil {
					return err
				}
			} else {
				spec := bucketTable(exp, buckets)
				if days > 0 {
					spec.title = exp.Label()
				}
				printTable(cmd, spec)
			}
			return buckets.Verify(len(ds.Documents))
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Window width in days (defaults to days_in_interval)")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")
	return cmd
}
