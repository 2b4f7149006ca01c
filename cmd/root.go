package main

import (
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/config"
)

const (
	FlagConfig    = "config"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
)

var (
	// Populated by the root command pre-run
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd is a base command.
var rootCmd = &cobra.Command{
	Use:   "match-presenter",
	Short: "Match state presentation client and match feed server",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configPath, err := cmd.Flags().GetString(FlagConfig)
		if err != nil {
			log.Fatalf("%s flag: %v", FlagConfig, err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		if cmd.Flags().Changed(FlagLogLevel) {
			cfg.Logging.Level, _ = cmd.Flags().GetString(FlagLogLevel)
		}
		if cmd.Flags().Changed(FlagLogFormat) {
			cfg.Logging.Format, _ = cmd.Flags().GetString(FlagLogFormat)
		}

		logger, err = initLogger(cfg.Logging)
		if err != nil {
			log.Fatalf("logger init: %v", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("rootCmd.Execute: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().String(FlagConfig, "", "(optional) path to a YAML config file")
	rootCmd.PersistentFlags().String(FlagLogLevel, "info", "(optional) log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String(FlagLogFormat, "console", "(optional) log format: json, console")
}
