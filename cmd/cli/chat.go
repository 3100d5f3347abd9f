package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"dinotidus/internal/cli/ui"
	"dinotidus/internal/client"
	"dinotidus/internal/corpus"
)

func ChatCmd() *cobra.Command {
	var (
		remote    bool
		addr      string
		modelPath string
		pretrain  bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the chat TUI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(true)
			if err != nil {
				return err
			}
			defer log.Close()

			var backend ui.Backend
			if remote {
				ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
				defer cancel()
				rb, err := ui.NewRemoteBackend(ctx, client.New(resolveBaseURL(addr, cfg)))
				if err != nil {
					return fmt.Errorf("failed to open session: %w", err)
				}
				defer rb.Close(context.Background())
				backend = rb
			} else {
				a, err := newAgent(cfg, log, modelPath)
				if err != nil {
					return err
				}
				if pretrain {
					a.TrainBatch(corpus.Default(), nil)
				}
				backend = ui.NewLocalBackend(a)
			}

			p := tea.NewProgram(ui.NewModel(backend, cfg.Agent.ThinkDelay), tea.WithAltScreen(), tea.WithMouseCellMotion())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("ui error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&remote, "remote", "r", false, "chat through a running host instead of a local agent")
	cmd.Flags().StringVar(&addr, "addr", "", "host address (default: port file, then server.http_addr)")
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "model snapshot to start from (local mode)")
	cmd.Flags().BoolVar(&pretrain, "pretrain", false, "train on the built-in corpus before chatting (local mode)")
	return cmd
}
