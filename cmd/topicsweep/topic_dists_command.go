package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"topicsweep/internal/config"
	"topicsweep/internal/fileutil"
	"topicsweep/internal/results"
	"topicsweep/internal/topicmodel/lda"
)

func newTopicDistsCommand(ctx *commandContext) *cobra.Command {
	var (
		topics   int
		trial    int
		idColumn string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "topic-dists EXPERIMENT_CONFIG",
		Short: "Export per-document topic distributions as CSV",
		Long: "Rebuild the experiment's corpus, load the model of a topic count, and write one\n" +
			"CSV row per document with its topic distribution. The model must have been\n" +
			"trained on exactly the rebuilt corpus.",
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
			reader := results.NewReader(st, ctx.baseLogger())
			var trialPtr *int
			if cmd.Flags().Changed("trial") {
				trialPtr = &trial
			}
			path, err := reader.ModelPath(exp, topics, trialPtr)
			if err != nil {
				return err
			}
			model, err := lda.Loader{}.Load(path)
			if err != nil {
				return err
			}
			ds, err := ctx.loadDataset(exp)
			if err != nil {
				return err
			}
			ids, err := results.DocumentIDs(exp, ds)
			if err != nil {
				return err
			}
			if idColumn == "" {
				idColumn = exp.IDKey
			}

			var buf bytes.Buffer
			if err := results.WriteTopicDists(&buf, idColumn, ids, model.DocTopics()); err != nil {
				return err
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			target, err := config.ExpandPath(output)
			if err != nil {
				return err
			}
			if err := fileutil.WriteFileAtomic(target, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d topic distributions to %s\n", len(ids), target)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&topics, "topics", "k", 0, "Topic count of the model")
	flags.IntVar(&trial, "trial", 0, "Trial index to load instead of the best one")
	flags.StringVar(&idColumn, "id-column", "", "Name of the id column (defaults to id_key)")
	flags.StringVarP(&output, "output", "o", "", "Write CSV to this file instead of stdout")
	_ = cmd.MarkFlagRequired("topics")
	return cmd
}
