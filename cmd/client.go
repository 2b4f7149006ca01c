package main

import (
	"bufio"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/animation"
	"github.com/itiky/match-presenter/playback"
	"github.com/itiky/match-presenter/presentation"
	"github.com/itiky/match-presenter/service/client"
	"github.com/itiky/match-presenter/storage"
)

const (
	FlagServerUrl  = "server-url"
	FlagTickRate   = "tick-rate"
	FlagAutopass   = "autopass"
	FlagRecordDir  = "record-dir"
	FlagNumRetries = "retries"
)

// GetClientCmd returns the match client start command.
func GetClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Connect to a match server and play the match on a headless presentation",
		Long: `Connect to a match server and play the match on a headless presentation.
Commands are read from stdin: skip, recap, pass, play <n>, mulligan [n...], emote, pause, resume, status, exit.`,
		Run: func(cmd *cobra.Command, args []string) {
			// Parse inputs
			clientCfg := cfg.Client
			if cmd.Flags().Changed(FlagServerUrl) {
				clientCfg.ServerURL, _ = cmd.Flags().GetString(FlagServerUrl)
			}
			if cmd.Flags().Changed(FlagTickRate) {
				clientCfg.TickRate, _ = cmd.Flags().GetInt(FlagTickRate)
			}
			if cmd.Flags().Changed(FlagAutopass) {
				clientCfg.Autopass, _ = cmd.Flags().GetBool(FlagAutopass)
			}
			if cmd.Flags().Changed(FlagRecordDir) {
				clientCfg.RecordDir, _ = cmd.Flags().GetString(FlagRecordDir)
			}
			numOfRetries, err := cmd.Flags().GetInt(FlagNumRetries)
			if err != nil {
				logger.Fatal("flag", zap.String("name", FlagNumRetries), zap.Error(err))
			}

			stallAction, err := playback.ParseStallAction(cfg.Playback.StallPolicy)
			if err != nil {
				logger.Fatal("playback.stall_policy", zap.Error(err))
			}
			duplicatePolicy, err := storage.ParseDuplicatePolicy(cfg.Playback.DuplicatePolicy)
			if err != nil {
				logger.Fatal("playback.duplicate_policy", zap.Error(err))
			}

			// Init service
			headless := presentation.NewHeadless(logger.Named("presentation"))
			svc, err := client.NewClient(
				client.Config{
					ServerURL: clientCfg.ServerURL,
					TickRate:  clientCfg.TickRate,
					Animation: animation.Config{
						Duration:    cfg.Animation.Duration,
						StaggerUnit: cfg.Animation.StaggerUnit,
					},
					Settings: playback.Settings{
						Autopass: clientCfg.Autopass,
						Tutorial: clientCfg.Tutorial,
					},
					Stall: playback.StallPolicy{
						Timeout: cfg.Playback.StallTimeout,
						Action:  stallAction,
					},
					DuplicatePolicy:  duplicatePolicy,
					RecordDir:        clientCfg.RecordDir,
					NumOfRetries:     numOfRetries,
					RetryFallbackDur: 500 * time.Millisecond,
				},
				headless.Context(),
				logger.Named("client"),
			)
			if err != nil {
				logger.Fatal("service init", zap.Error(err))
			}

			svc.Start()

			// Read user commands
			go func() {
				scanner := bufio.NewScanner(os.Stdin)
				for scanner.Scan() {
					svc.Submit(scanner.Text())
				}
			}()

			// Wait for signal or exit
			signalCh := make(chan os.Signal, 1)
			signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-signalCh:
			case <-svc.Done():
			}

			svc.Stop()
		},
	}
	cmd.Flags().String(FlagServerUrl, "ws://127.0.0.1:2412/match", "(optional) server websocket url")
	cmd.Flags().Int(FlagTickRate, 60, "(optional) frames per second")
	cmd.Flags().Bool(FlagAutopass, true, "(optional) pass automatically when no card is playable")
	cmd.Flags().String(FlagRecordDir, "", "(optional) directory to save the match recording to on exit")
	cmd.Flags().Int(FlagNumRetries, 120, "(optional) connection retries while the server is down")

	return cmd
}

func init() {
	rootCmd.AddCommand(GetClientCmd())
}
