package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"topicsweep/internal/results"
	"topicsweep/internal/topicmodel/lda"
)

func newBestCommand(ctx *commandContext) *cobra.Command {
	var (
		topics    int
		trial     int
		slice     int
		onlyTopic int
		words     int
		asJSON    bool
		export    string
	)

	cmd := &cobra.Command{
		Use:   "best EXPERIMENT_CONFIG",
		Short: "Show the top words of the best model for a topic count",
		Long: "Load the highest-coherence trial (or --trial) of a topic count and print the\n" +
			"top words of every topic, with per-topic coherence when it was saved.\n" +
			"Sequential experiments print every time slice (or --slice).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := ctx.loadExperiment(args[0])
			if err != nil {
				return err
			}
			st, err := ctx.store()
			if err != nil {
				return err
			}
			q := results.WordsQuery{Experiment: exp.Name, Topics: topics, N: words}
			flags := cmd.Flags()
			if flags.Changed("trial") {
				q.Trial = &trial
			}
			if flags.Changed("slice") {
				q.Slice = &slice
			}
			if flags.Changed("only-topic") {
				q.OnlyTopic = &onlyTopic
			}
			reader := results.NewReader(st, ctx.baseLogger())

			if export != "" {
				src, err := reader.ExportModel(exp, topics, q.Trial, export)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Copied %s to %s\n", src, export)
			}

			if exp.Sequential() {
				report, err := reader.SliceWords(lda.Loader{}, q)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, report)
				}
				for _, s := range report.Slices {
					printTable(cmd, wordsTable(
						fmt.Sprintf("%s, %d topics, slice %d from %s (coherence %s)",
							exp.Label(), topics, s.Slice, s.Label, formatCoherence(s.Coherence)),
						s.TopicWords))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Average coherence: %s\n", formatCoherence(report.AvgCoherence))
				return nil
			}

			report, err := reader.TopWords(lda.Loader{}, q)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, report)
			}
			printTable(cmd, wordsTable(
				fmt.Sprintf("%s, %d topics, trial %d (coherence %s)",
					exp.Label(), topics, report.Trial, formatCoherence(report.Coherence)),
				report.TopicWords))
			fmt.Fprintf(cmd.OutOrStdout(), "Model: %s\n", report.Path)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&topics, "topics", "k", 0, "Topic count to inspect")
	flags.IntVar(&trial, "trial", 0, "Trial index to load instead of the best one")
	flags.IntVar(&slice, "slice", 0, "Only show this time slice (sequential experiments)")
	flags.IntVar(&onlyTopic, "only-topic", 0, "Only show this topic")
	flags.IntVarP(&words, "words", "n", 10, "Words per topic")
	flags.BoolVar(&asJSON, "json", false, "Emit JSON")
	flags.StringVar(&export, "export", "", "Copy the selected model artifact to this path")
	_ = cmd.MarkFlagRequired("topics")
	return cmd
}

func wordsTable(title string, topics []results.TopicWords) tableSpec {
	spec := tableSpec{
		title:   title,
		headers: []string{"Topic", "Coherence", "Words"},
		aligns:  []columnAlignment{alignRight, alignRight, alignLeft},
	}
	for _, t := range topics {
		coh := "-"
		if t.Coherence != nil {
			coh = formatCoherence(*t.Coherence)
		}
		spec.rows = append(spec.rows, []string{strconv.Itoa(t.Topic), coh, strings.Join(t.Words, ", ")})
	}
	return spec
}
