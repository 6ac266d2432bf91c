package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"topicsweep/internal/preflight"
	"topicsweep/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check [EXPERIMENT_CONFIG...]",
		Short: "Verify directories, the run index, and experiment data files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, path := range args {
				exp, err := ctx.loadExperiment(path)
				if err != nil {
					results = append(results, preflight.Result{Name: "Experiment " + path, Detail: err.Error()})
					continue
				}
				results = append(results, preflight.Result{Name: "Experiment " + exp.Name, Passed: true, Detail: path})
				results = append(results, preflight.CheckDataFile("Data "+exp.Name, exp.ResolveDataPath(cfg.Paths.DataDir)))
			}

			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				spec := tableSpec{
					headers: []string{"Check", "Status", "Detail"},
					aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft},
				}
				for _, r := range results {
					status := "ok"
					if !r.Passed {
						status = "FAIL"
					}
					spec.rows = append(spec.rows, []string{r.Name, status, r.Detail})
				}
				printTable(cmd, spec)
			}

			if failed := preflight.Failed(results); failed > 0 {
				return services.Wrap(services.ErrConfiguration, "cli", "check",
					fmt.Sprintf("%d of %d checks failed", failed, len(results)), nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
