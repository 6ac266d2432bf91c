package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"topicsweep/internal/index"
	"topicsweep/internal/services"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "runs [EXPERIMENT]",
		Short: "List recorded sweep runs",
		Long: "List sweep runs from the run index, newest first. With an experiment name,\n" +
			"also list its indexed topic-count summaries and the best one.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := ctx.openIndex()
			if err != nil {
				return err
			}
			defer idx.Close()

			var experiment string
			if len(args) == 1 {
				experiment = args[0]
			}
			runs, err := idx.Runs(cmd.Context(), experiment, limit)
			if err != nil {
				return err
			}
			var records []index.Summary
			if experiment != "" {
				if records, err = idx.Records(cmd.Context(), experiment); err != nil {
					return err
				}
			}

			if asJSON {
				return writeJSON(cmd, struct {
					Runs    []index.Run     `json:"runs"`
					Records []index.Summary `json:"records,omitempty"`
				}{runs, records})
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
			} else {
				printTable(cmd, runsTable(runs))
			}
			if experiment == "" || len(records) == 0 {
				return nil
			}
			best, err := idx.Best(cmd.Context(), experiment)
			if err != nil && !errors.Is(err, services.ErrNotFound) {
				return err
			}
			printTable(cmd, recordsTable(experiment, records, best.Topics))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func runsTable(runs []index.Run) tableSpec {
	spec := tableSpec{
		headers: []string{"Run", "Experiment", "Mode", "Topics", "Status", "Started", "Duration", "Error"},
		aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	}
	for _, r := range runs {
		duration := "-"
		if !r.FinishedAt.IsZero() {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		spec.rows = append(spec.rows, []string{
			shortID(r.ID),
			r.Experiment,
			r.Mode,
			fmt.Sprintf("%d-%d", r.MinTopics, r.MaxTopics),
			string(r.Status),
			r.StartedAt.Local().Format(time.DateTime),
			duration,
			r.ErrorMessage,
		})
	}
	return spec
}

func recordsTable(experiment string, records []index.Summary, best int) tableSpec {
	spec := tableSpec{
		title:   experiment,
		headers: []string{"Topics", "Avg coherence", "Stdev", "Points", "Run", ""},
		aligns:  []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	}
	for _, r := range records {
		marker := ""
		if r.Topics == best {
			marker = "best"
		}
		spec.rows = append(spec.rows, []string{
			strconv.Itoa(r.Topics),
			formatCoherence(r.AvgCoherence),
			formatCoherence(r.CoherenceStdev),
			strconv.Itoa(r.Points),
			shortID(r.RunID),
			marker,
		})
	}
	return spec
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
