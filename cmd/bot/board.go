package main

import (
	"fmt"
	"os"

	"github.com/Freeeeeet/sessions_bot/internal/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var boardOut string

var boardCmd = &cobra.Command{
	Use:   "render-board",
	Short: "Render the current week of sessions to a PNG file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx := cmd.Context()
		d, err := buildDeps(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer d.close()

		view, err := d.display.BuildView(ctx)
		if err != nil {
			return fmt.Errorf("build view: %w", err)
		}

		img, err := render.WeekBoard(view, d.clock.Location())
		if err != nil {
			return err
		}

		if err := os.WriteFile(boardOut, img, 0o644); err != nil {
			return fmt.Errorf("write board: %w", err)
		}

		logger.Info("Week board rendered",
			zap.String("path", boardOut),
			zap.Int("days", len(view.Days)),
			zap.Int("claims", view.ClaimCount()))
		return nil
	},
}

func init() {
	boardCmd.Flags().StringVarP(&boardOut, "out", "o", "week.png", "output PNG path")
	rootCmd.AddCommand(boardCmd)
}
