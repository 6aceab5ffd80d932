package main

import (
	"encoding/json"
	"fmt"
	"io"

	"ecopredict/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func evaluateCmd(configPath *string) *cobra.Command {
	var (
		req    models.SolvencyRequest
		output string
		record bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a client against the configured dataset",
		Long: `Score a client against the configured dataset.

Examples:
  ecopredict evaluate --client N23017007413 --amount 1000 --rate 0.05 --term 60
  ecopredict evaluate --client N23017007413 --amount 1000 --rate 0 --term 12 --output yaml --record`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()

			evaluate := a.service.Preview
			if record {
				evaluate = a.service.Evaluate
			}

			outcome, err := evaluate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, outcome)
		},
	}

	cmd.Flags().StringVar(&req.ClientID, "client", "", "client account id")
	cmd.Flags().Float64Var(&req.RequestedAmount, "amount", 0, "requested loan amount")
	cmd.Flags().Float64Var(&req.AnnualRate, "rate", 0, "annual interest rate as a fraction, e.g. 0.05")
	cmd.Flags().IntVar(&req.TermMonths, "term", 0, "loan term in months")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format (json, yaml)")
	cmd.Flags().BoolVar(&record, "record", false, "append the evaluation to the history log")
	for _, name := range []string{"client", "amount", "rate", "term"} {
		cmd.MarkFlagRequired(name)
	}

	return cmd
}

// writeOutput печатает outcome в формате json или yaml
func writeOutput(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
