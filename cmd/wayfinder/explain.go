package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/aretw0/wayfinder/internal/presentation/tui"
)

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain URL",
	Short: "Explain how a console URL is parsed and dispatched",
	Long: `Parses URL and reports the state, the dispatcher every key resolves to
and the decoded inspector. With --graph a Mermaid diagram of the state is
appended. Output is rendered for the terminal when stdout is a TTY.`,
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

		withGraph, _ := cmd.Flags().GetBool("graph")
		e, err := cli.Explain(cmd.Context(), r, args[0], withGraph)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			y, err := tui.StateYAML(e.State)
			if err != nil {
				return err
			}
			fmt.Fprint(out, y)
			return nil
		}

		md, err := e.Markdown()
		if err != nil {
			return err
		}
		if !isTerminal(out) {
			fmt.Fprint(out, md)
			return nil
		}

		tui.PrintBanner(out, wayfinder.Version)
		render, err := tui.NewRenderer(termWidth(out))
		if err != nil {
			return err
		}
		rendered, err := render(md)
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().Bool("graph", false, "Append a Mermaid diagram of the state")
	explainCmd.Flags().Bool("yaml", false, "Print only the parsed state as YAML")
}
