// Command facultyhire runs the faculty recruitment assistant: the HTTP API,
// the resume screening worker pool and a set of one-shot model commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muhammadolammi/facultyhire/internal/config"
	"github.com/muhammadolammi/facultyhire/internal/logger"
)

var (
	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "facultyhire",
	Short: "Faculty recruitment assistant",
	Long: `facultyhire screens faculty applications with hosted Gemini models.

serve starts the HTTP API, worker consumes queued resume screenings, and the
remaining subcommands run a single model task from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		var err error
		if path != "" {
			cfg, err = config.LoadFromFile(path)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		log = logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./config.yaml or ./configs/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
