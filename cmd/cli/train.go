package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"dinotidus/internal/corpus"
	"dinotidus/pkg/neural"
)

func TrainCmd() *cobra.Command {
	var (
		modelPath string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "train [corpus]",
		Short: "Train on a corpus (json, jsonl, csv, yaml, parquet) and write a model snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(false)
			if err != nil {
				return err
			}
			defer log.Close()

			pairs := corpus.Default()
			if len(args) == 1 {
				if pairs, err = corpus.Load(args[0]); err != nil {
					return err
				}
			}

			a, err := newAgent(cfg, log, modelPath)
			if err != nil {
				return err
			}

			trainWithProgress(a.TrainBatch, pairs, cfg.Model.Epochs)

			if err := saveAgent(a, outPath); err != nil {
				return fmt.Errorf("failed to save model: %w", err)
			}
			s := a.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Model written to %s: %d pairs, vocabulary %d, size %.2f, quality %.0f%%\n",
				outPath, len(pairs), s.Vocabulary, s.Size, s.Quality*100)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "model snapshot to continue training")
	cmd.Flags().StringVarP(&outPath, "out", "o", "model.json", "output snapshot file")
	return cmd
}

// trainWithProgress runs train with a progress bar over every training step.
func trainWithProgress(train func([]neural.Pair, func(step, total int)), pairs []neural.Pair, epochs int) {
	p := mpb.New(mpb.WithWidth(80))
	bar := p.AddBar(int64(len(pairs)*epochs),
		mpb.PrependDecorators(
			decor.Name("Training: "),
			decor.CountersNoUnit("%d / %d", decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO), "done!"),
		),
	)

	train(pairs, func(step, total int) {
		bar.SetCurrent(int64(step))
	})
	// Completes the bar when there were no steps at all.
	bar.SetTotal(-1, true)
	p.Wait()
}
