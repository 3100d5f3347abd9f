package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func AskCmd() *cobra.Command {
	var (
		modelPath string
		savePath  string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Get a single reply from a local agent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(false)
			if err != nil {
				return err
			}
			defer log.Close()

			a, err := newAgent(cfg, log, modelPath)
			if err != nil {
				return err
			}

			reply := a.Respond(strings.Join(args, " "))
			if savePath != "" {
				if err := saveAgent(a, savePath); err != nil {
					return fmt.Errorf("failed to save model: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(reply)
			}
			fmt.Fprintln(out, reply.Text)
			for _, q := range reply.FollowUps {
				fmt.Fprintf(out, "  - %s\n", q)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "model snapshot to start from")
	cmd.Flags().StringVarP(&savePath, "save", "s", "", "write the updated model snapshot to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full reply as JSON")
	return cmd
}
