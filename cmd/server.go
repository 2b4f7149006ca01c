package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/service/server"
	"github.com/itiky/match-presenter/storage"
)

const (
	FlagAddress       = "address"
	FlagRecording     = "recording"
	FlagShuffleWindow = "shuffle-window"
	FlagRedeliver     = "redeliver"
	FlagSendPeriod    = "send-period"
)

// GetServerCmd returns the match feed server start command.
func GetServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start a websocket server feeding a recorded match to clients",
		Run: func(cmd *cobra.Command, args []string) {
			// Parse inputs
			serverCfg := cfg.Server
			if cmd.Flags().Changed(FlagAddress) {
				serverCfg.Address, _ = cmd.Flags().GetString(FlagAddress)
			}
			if cmd.Flags().Changed(FlagRecording) {
				serverCfg.Recording, _ = cmd.Flags().GetString(FlagRecording)
			}
			if cmd.Flags().Changed(FlagShuffleWindow) {
				serverCfg.ShuffleWindow, _ = cmd.Flags().GetInt(FlagShuffleWindow)
			}
			if cmd.Flags().Changed(FlagRedeliver) {
				serverCfg.Redeliver, _ = cmd.Flags().GetBool(FlagRedeliver)
			}
			if cmd.Flags().Changed(FlagSendPeriod) {
				serverCfg.SendPeriod, _ = cmd.Flags().GetDuration(FlagSendPeriod)
			}

			var (
				recording *storage.Recording
				err       error
			)
			if serverCfg.Recording != "" {
				recording, err = storage.LoadRecording(serverCfg.Recording)
			} else {
				logger.Info("no recording set, generating a match")
				recording, err = storage.GenerateMatch(storage.MatchGenOptions{Rounds: 3, DeckSize: 12, HandSize: 3})
			}
			if err != nil {
				logger.Fatal("recording", zap.Error(err))
			}

			// Init service
			svc, err := server.NewMatchFeed(
				server.Config{
					SendPeriod:    serverCfg.SendPeriod,
					ShuffleWindow: serverCfg.ShuffleWindow,
					Redeliver:     serverCfg.Redeliver,
				},
				recording,
				logger.Named("server"),
			)
			if err != nil {
				logger.Fatal("service init", zap.Error(err))
			}

			// Start server
			mux := http.NewServeMux()
			mux.Handle("/match", svc)
			httpServer := &http.Server{
				Addr:    serverCfg.Address,
				Handler: mux,
			}

			svc.Start()
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("http server", zap.Error(err))
				}
			}()

			logger.Info("match feed server started", zap.String("address", serverCfg.Address))

			// Wait for signal
			signalCh := make(chan os.Signal, 1)
			signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
			<-signalCh

			svc.Stop()
			_ = httpServer.Close()
		},
	}
	cmd.Flags().String(FlagAddress, ":2412", "(optional) listen address")
	cmd.Flags().String(FlagRecording, "", "(optional) match recording file (a random match is generated if empty)")
	cmd.Flags().Int(FlagShuffleWindow, 0, "(optional) permute snapshot delivery within windows of this size")
	cmd.Flags().Bool(FlagRedeliver, false, "(optional) redeliver the first snapshot of every window")
	cmd.Flags().Duration(FlagSendPeriod, 0, "(optional) delay between sent snapshots")

	return cmd
}

func init() {
	rootCmd.AddCommand(GetServerCmd())
}
