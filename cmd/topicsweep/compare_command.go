package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"topicsweep/internal/experiment"
	"topicsweep/internal/results"
)

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var format string
	var baselines []string
	var slices bool
	var removeFromLabel []string

	cmd := &cobra.Command{
		Use:   "compare EXPERIMENT_CONFIG...",
		Short: "Compare aggregated coherence across experiments and topic counts",
		Long: "Print the aggregated coherence of every stored topic count for one or more\n" +
			"experiments. Topic counts without a record are skipped with a warning.\n" +
			"With --slices, print the per-slice coherence of a sequential experiment instead.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format, formatTable, formatJSON, formatCSV)
			if err != nil {
				return err
			}
			exps := make([]*experiment.Config, 0, len(args))
			for _, path := range args {
				exp, err := ctx.loadExperiment(path)
				if err != nil {
					return err
				}
				exps = append(exps, exp)
			}
			st, err := ctx.store()
			if err != nil {
				return err
			}
			reader := results.NewReader(st, ctx.baseLogger())

			if slices {
				return compareSlices(cmd, reader, exps, removeFromLabel, outFormat)
			}

			series, err := reader.Compare(exps)
			if err != nil {
				return err
			}
			for _, name := range baselines {
				b, err := reader.Baseline(name, "")
				if err != nil {
					return err
				}
				series = append(series, b)
			}

			switch outFormat {
			case formatJSON:
				return writeJSON(cmd, series)
			case formatCSV:
				return results.WriteSeriesCSV(cmd.OutOrStdout(), series)
			}
			for _, s := range series {
				printTable(cmd, seriesTable(s))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json, or csv")
	cmd.Flags().StringSliceVar(&baselines, "baseline", nil, "Baseline experiment name to include as a reference")
	cmd.Flags().BoolVar(&slices, "slices", false, "Show per-slice coherence for sequential experiments")
	cmd.Flags().StringSliceVar(&removeFromLabel, "remove-from-label", nil, "Substrings to strip from slice labels")
	return cmd
}

func compareSlices(cmd *cobra.Command, reader *results.Reader, exps []*experiment.Config, strip []string, outFormat string) error {
	type experimentSlices struct {
		Experiment string                `json:"experiment"`
		Label      string                `json:"label"`
		Topics     []results.SliceSeries `json:"topics"`
	}
	var all []experimentSlices
	for _, exp := range exps {
		series, err := reader.Slices(exp.Name, strip)
		if err != nil {
			return err
		}
		all = append(all, experimentSlices{Experiment: exp.Name, Label: exp.Label(), Topics: series})
	}

	switch outFormat {
	case formatJSON:
		return writeJSON(cmd, all)
	case formatCSV:
		for _, e := range all {
			if err := results.WriteSlicesCSV(cmd.OutOrStdout(), e.Topics); err != nil {
				return err
			}
		}
		return nil
	}
	for _, e := range all {
		for _, s := range e.Topics {
			spec := tableSpec{
				title:   fmt.Sprintf("%s, %d topics", e.Label, s.Topics),
				headers: []string{"Slice", "Start", "Posts", "Coherence"},
				aligns:  []columnAlignment{alignRight, alignLeft, alignRight, alignRight},
			}
			for _, p := range s.Slices {
				spec.rows = append(spec.rows, []string{
					strconv.Itoa(p.Slice), p.Label, strconv.Itoa(p.NumPosts), formatCoherence(p.Coherence),
				})
			}
			printTable(cmd, spec)
		}
	}
	return nil
}

func seriesTable(s results.Series) tableSpec {
	title := s.Label
	if s.Baseline {
		title += " (baseline)"
	}
	spec := tableSpec{
		title:   title,
		headers: []string{"Topics", "Avg coherence", "Stdev", "Variance", "Points"},
		aligns:  []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
	}
	bestIdx := -1
	for i, p := range s.Points {
		if bestIdx < 0 || p.AvgCoherence > s.Points[bestIdx].AvgCoherence {
			bestIdx = i
		}
		spec.rows = append(spec.rows, []string{
			strconv.Itoa(p.Topics),
			formatCoherence(p.AvgCoherence),
			formatCoherence(p.CoherenceStdev),
			formatCoherence(p.CoherenceVariance),
			strconv.Itoa(p.Points),
		})
	}
	if bestIdx >= 0 && len(s.Points) > 1 {
		spec.footer = []string{"best", strconv.Itoa(s.Points[bestIdx].Topics), "", "", ""}
	}
	return spec
}
