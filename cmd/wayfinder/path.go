package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/aretw0/wayfinder/pkg/domain"
)

var pathCmd = &cobra.Command{
	Use:   "path [STATE]",
	Short: "Generate the canonical URL of a state",
	Long:  `Reads a JSON state from the argument, or from stdin when omitted, and prints its canonical URL.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		r, err := cli.NewRouter(cfg, logger)
		if err != nil {
			return err
		}

		var data []byte
		if len(args) == 1 {
			data = []byte(args[0])
		} else if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
			return fmt.Errorf("failed to read state: %w", err)
		}

		var state domain.Tree
		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("invalid state: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), r.GeneratePathFor(state))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
}
