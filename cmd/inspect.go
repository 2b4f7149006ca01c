package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/model"
	"github.com/itiky/match-presenter/storage"
	"github.com/itiky/match-presenter/zonediff"
)

// GetInspectCmd returns the recording inspection command.
func GetInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [recording]",
		Short: "Print a recording's versions and the animation ops between them",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rec, err := storage.LoadRecording(args[0])
			if err != nil {
				logger.Fatal("loading recording", zap.Error(err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "match %s: %s vs %s, %d snapshots\n", rec.MatchId, rec.Players[0], rec.Players[1], rec.Size())

			var prev *model.Snapshot
			for _, s := range rec.Snapshots {
				fmt.Fprint(out, s.String())
				for _, op := range zonediff.Diff(prev, s) {
					fmt.Fprintf(out, "    %s\n", op.String())
				}
				if s.SoundCue != "" {
					fmt.Fprintf(out, "    cue: %s\n", s.SoundCue)
				}
				prev = s
			}
		},
	}
	cmd.SetErr(os.Stderr)

	return cmd
}

func init() {
	rootCmd.AddCommand(GetInspectCmd())
}
