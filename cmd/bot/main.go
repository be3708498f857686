package main

import (
	"fmt"
	"os"

	_ "time/tzdata"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sessions-bot",
	Short: "Telegram bot for claiming roles in weekly training sessions",
	Long: `Publishes the weekly schedule of training sessions to a Telegram chat
and lets members claim a role (Host, Trainer, Assistant) in each session.

Without a subcommand the bot is started.`,
	SilenceUsage: true,
	RunE:         runBot,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
