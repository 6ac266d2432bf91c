package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"topicsweep/internal/corpus"
)

func newCommonWordsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "common-words EXPERIMENT_CONFIG",
		Short: "List the most common tokens after preprocessing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := ctx.loadExperiment(args[0])
			if err != nil {
				return err
			}
			ds, err := ctx.loadDataset(exp)
			if err != nil {
				return err
			}
			counts := corpus.MostCommon(ds.Documents, limit)
			if asJSON {
				return writeJSON(cmd, counts)
			}
			spec := tableSpec{
				title:   fmt.Sprintf("%s: %d posts", exp.Label(), len(ds.Documents)),
				headers: []string{"Rank", "Token", "Count"},
				aligns:  []columnAlignment{alignRight, alignLeft, alignRight},
			}
			for i, c := range counts {
				spec.rows = append(spec.rows, []string{strconv.Itoa(i + 1), c.Token, strconv.Itoa(c.Count)})
			}
			printTable(cmd, spec)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Number of tokens to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
