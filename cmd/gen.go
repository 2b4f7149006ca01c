package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/storage"
)

const (
	FlagOutputDir = "output-dir"
	FlagRounds    = "rounds"
	FlagDeckSize  = "deck-size"
	FlagHandSize  = "hand-size"
	FlagSeed      = "seed"
)

// GetGenerateCmd returns generate mock match command.
func GetGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random match recording",
		Run: func(cmd *cobra.Command, args []string) {
			// Parse inputs
			outputDir, err := cmd.Flags().GetString(FlagOutputDir)
			if err != nil {
				logger.Fatal("flag", zap.String("name", FlagOutputDir), zap.Error(err))
			}
			opts := storage.MatchGenOptions{}
			if opts.Rounds, err = cmd.Flags().GetInt(FlagRounds); err != nil {
				logger.Fatal("flag", zap.String("name", FlagRounds), zap.Error(err))
			}
			if opts.DeckSize, err = cmd.Flags().GetInt(FlagDeckSize); err != nil {
				logger.Fatal("flag", zap.String("name", FlagDeckSize), zap.Error(err))
			}
			if opts.HandSize, err = cmd.Flags().GetInt(FlagHandSize); err != nil {
				logger.Fatal("flag", zap.String("name", FlagHandSize), zap.Error(err))
			}
			if opts.Seed, err = cmd.Flags().GetInt64(FlagSeed); err != nil {
				logger.Fatal("flag", zap.String("name", FlagSeed), zap.Error(err))
			}

			// Work
			filePath, err := storage.GenAndSaveMatch(outputDir, opts, logger.Named("generator"))
			if err != nil {
				logger.Fatal("gen failed", zap.Error(err))
			}
			logger.Info("match generated", zap.String("path", filePath))
		},
	}
	cmd.Flags().String(FlagOutputDir, "./recordings", "(optional) output directory")
	cmd.Flags().Int(FlagRounds, 3, "(optional) number of rounds")
	cmd.Flags().Int(FlagDeckSize, 15, "(optional) cards per deck")
	cmd.Flags().Int(FlagHandSize, 3, "(optional) initial hand size")
	cmd.Flags().Int64(FlagSeed, 1, "(optional) random seed")

	return cmd
}

func init() {
	rootCmd.AddCommand(GetGenerateCmd())
}
