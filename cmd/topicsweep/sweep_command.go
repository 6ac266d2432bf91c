package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"topicsweep/internal/corpus"
	"topicsweep/internal/experiment"
	"topicsweep/internal/sweep"
	"topicsweep/internal/timebucket"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var showBuckets bool

	cmd := &cobra.Command{
		Use:   "sweep EXPERIMENT_CONFIG",
		Short: "Train and score every topic count of an experiment",
		Long: "Train n_trials models (or one time-sliced model for ldaseq experiments) for every\n" +
			"topic count from min_topics to max_topics, score their coherence, and store one\n" +
			"metadata record per topic count under the model directory.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := ctx.loadExperiment(args[0])
			if err != nil {
				return err
			}
			ds, err := ctx.loadDataset(exp)
			if err != nil {
				return err
			}
			env, err := ctx.newSweepEnv(exp)
			if err != nil {
				return err
			}
			defer env.Close()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			summary, runErr := env.driver.Run(signalCtx, ds)
			env.exportMetrics()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s: %d documents (%d read, %d outside time range)\n",
				summary.RunID, summary.Documents, ds.Stats.Read, ds.Stats.OutsideRange)
			if showBuckets && summary.Buckets != nil {
				printTable(cmd, bucketTable(exp, *summary.Buckets))
			}
			if len(summary.Topics) > 0 {
				printTable(cmd, sweepTable(exp, summary))
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&showBuckets, "show-buckets", false, "Print the time windows of a sequential experiment")
	return cmd
}

func newBaselineCommand(ctx *commandContext) *cobra.Command {
	var topics int

	cmd := &cobra.Command{
		Use:   "baseline EXPERIMENT_CONFIG",
		Short: "Train a single-topic-count reference for comparisons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := ctx.loadExperiment(args[0])
			if err != nil {
				return err
			}
			if topics < 1 {
				topics = exp.MinTopics
			}
			ds, err := ctx.loadDataset(exp)
			if err != nil {
				return err
			}
			env, err := ctx.newSweepEnv(exp)
			if err != nil {
				return err
			}
			defer env.Close()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			result, err := env.driver.RunBaseline(signalCtx, ds, topics)
			env.exportMetrics()
			if err != nil {
				return err
			}
			agg := result.Record.Aggregated
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline %s (%d topics): avg coherence %s, stdev %s over %d trials\n",
				exp.Name, topics, formatCoherence(agg.AvgCoherence), formatCoherence(agg.CoherenceStdev),
				len(result.Record.Trials))
			return nil
		},
	}

	cmd.Flags().IntVar(&topics, "topics", 0, "Topic count to train (defaults to min_topics)")
	return cmd
}

func sweepTable(exp *experiment.Config, summary sweep.Summary) tableSpec {
	spec := tableSpec{
		title:   fmt.Sprintf("%s (%s)", exp.Label(), summary.Mode),
		headers: []string{"Topics", "Avg coherence", "Stdev", "Points", "Failures", "Status"},
		aligns:  []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	}
	for _, t := range summary.Topics {
		status := "written"
		avg, stdev, points := "-", "-", "0"
		if t.Skipped {
			status = "skipped"
		} else {
			avg = formatCoherence(t.Record.Aggregated.AvgCoherence)
			stdev = formatCoherence(t.Record.Aggregated.CoherenceStdev)
			points = strconv.Itoa(len(t.Record.Coherences()))
		}
		spec.rows = append(spec.rows, []string{
			strconv.Itoa(t.Topics), avg, stdev, points, strconv.Itoa(len(t.Failures)), status,
		})
	}
	spec.footer = []string{"", "", "", "", "", summary.Duration.Round(time.Millisecond).String()}
	return spec
}

func bucketTable(exp *experiment.Config, b timebucket.Buckets) tableSpec {
	spec := tableSpec{
		title:   fmt.Sprintf("%s: %d-day windows", exp.Label(), exp.DaysInInterval),
		headers: []string{"Window", "Start", "End", "Documents"},
		aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	}
	format := exp.LabelFormat()
	for _, w := range b.Windows {
		spec.rows = append(spec.rows, []string{
			strconv.Itoa(w.Index), w.Label, corpus.FormatTime(w.End, format), strconv.Itoa(w.Count),
		})
	}
	spec.footer = []string{"", "", "total", strconv.Itoa(b.Total())}
	return spec
}
