package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/aretw0/wayfinder/internal/presentation/tui"
)

var parseCmd = &cobra.Command{
	Use:   "parse URL",
	Short: "Parse a console URL into application state",
	Long: `Parses URL and prints the resulting state. On a malformed URL the state
parsed before the failure is still printed and the command exits non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		r, err := cli.NewRouter(cfg, logger)
		if err != nil {
			return err
		}

		state, parseErr := r.GenerateState(cmd.Context(), args[0], false)

		asYAML, _ := cmd.Flags().GetBool("yaml")
		var out string
		if asYAML {
			out, err = tui.StateYAML(state)
		} else {
			var data []byte
			data, err = json.MarshalIndent(state, "", "  ")
			out = string(data) + "\n"
		}
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return parseErr
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().Bool("yaml", false, "Print the state as YAML")
}
